package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/capiorg/backend/internal/domain"
	"github.com/capiorg/backend/internal/repository"
)

// Presenter derives display URLs and public profile projections. File URLs
// are pure string templating over the external storage domain; the document
// contents are never touched here.
type Presenter struct {
	FilesDomain string
}

func (p *Presenter) FileURL(documentID uuid.UUID) string {
	return fmt.Sprintf("%s/v1/documents/%s/file", p.FilesDomain, documentID)
}

func (p *Presenter) FileMetaURL(documentID uuid.UUID) string {
	return fmt.Sprintf("%s/v1/documents/%s/stats", p.FilesDomain, documentID)
}

func (p *Presenter) Profile(u *domain.User) *domain.UserProfile {
	if u == nil {
		return nil
	}
	prof := &domain.UserProfile{
		ID:        u.ID,
		Login:     u.Login,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsOnline:  u.IsOnline,
	}
	if u.AvatarID != nil {
		url := p.FileURL(*u.AvatarID)
		prof.AvatarURL = &url
	}
	return prof
}

func (p *Presenter) Attachments(rows []repository.AttachmentRow) []domain.AttachmentView {
	out := make([]domain.AttachmentView, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.AttachmentView{
			ID:         row.ID,
			DocumentID: row.DocumentID,
			URL:        p.FileURL(row.DocumentID),
			Meta:       p.FileMetaURL(row.DocumentID),
		})
	}
	return out
}
