package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/capiorg/backend/internal/domain"
)

// AttachmentRow is a message/document link joined with the document row.
type AttachmentRow struct {
	ID         uuid.UUID `gorm:"column:uuid"`
	MessageID  uuid.UUID `gorm:"column:message_id"`
	DocumentID uuid.UUID `gorm:"column:document_id"`
}

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Link idempotently associates the documents with the message inside the
// caller's transaction. Document placeholder rows are created when missing
// and existing links are silently absorbed, so the call is safe to repeat
// and a no-op for an empty list.
func (r *AttachmentRepository) Link(tx *gorm.DB, messageID uuid.UUID, documentIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	docs := make([]domain.Document, 0, len(documentIDs))
	for _, id := range documentIDs {
		docs = append(docs, domain.Document{ID: id})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&docs).Error; err != nil {
		return nil, err
	}

	links := make([]domain.MessageAttachment, 0, len(documentIDs))
	for _, id := range documentIDs {
		links = append(links, domain.MessageAttachment{MessageID: messageID, DocumentID: id})
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "document_id"}},
		DoNothing: true,
	}).Create(&links).Error
	if err != nil {
		return nil, err
	}
	return documentIDs, nil
}

// ListForMessages loads attachment links for the given message ids, keyed by
// message id.
func (r *AttachmentRepository) ListForMessages(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID][]AttachmentRow, error) {
	out := make(map[uuid.UUID][]AttachmentRow, len(messageIDs))
	if len(messageIDs) == 0 {
		return out, nil
	}
	var rows []AttachmentRow
	err := r.db.WithContext(ctx).
		Table("messages_documents").
		Select("messages_documents.uuid, messages_documents.message_id, messages_documents.document_id").
		Where("messages_documents.message_id IN ?", messageIDs).
		Order("messages_documents.uuid").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		out[row.MessageID] = append(out[row.MessageID], row)
	}
	return out, nil
}
