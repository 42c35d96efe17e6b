package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capiorg/backend/internal/domain"
	"github.com/capiorg/backend/internal/events"
	"github.com/capiorg/backend/internal/repository"
)

// MessageService runs message commands as single database transactions and
// emits socket events strictly after commit. A lost notification is never
// treated as a failed write.
type MessageService struct {
	msgs   *repository.MessageRepository
	convs  *repository.ConversationRepository
	users  *repository.UserRepository
	att    *repository.AttachmentRepository
	pub    events.Publisher
	stream *events.StreamProducer
	pres   *Presenter
	log    *zap.SugaredLogger
}

func NewMessageService(
	msgs *repository.MessageRepository,
	convs *repository.ConversationRepository,
	users *repository.UserRepository,
	att *repository.AttachmentRepository,
	pub events.Publisher,
	stream *events.StreamProducer,
	pres *Presenter,
	log *zap.SugaredLogger,
) *MessageService {
	return &MessageService{
		msgs:   msgs,
		convs:  convs,
		users:  users,
		att:    att,
		pub:    pub,
		stream: stream,
		pres:   pres,
		log:    log,
	}
}

// Send inserts the message and, only once the transaction has committed,
// emits newMessageResponse with the hydrated view. A reply additionally
// republishes updateMessageResponse for its parent, whose thread_count
// changed.
func (s *MessageService) Send(ctx context.Context, p repository.SendParams) (*domain.MessageView, error) {
	ok, err := s.convs.Exists(ctx, p.ConversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	msg, err := s.msgs.Send(ctx, p)
	if err != nil {
		return nil, err
	}

	// The write is committed past this point; a failed read must not surface
	// as a failed send.
	view, err := s.GetOne(ctx, p.AuthorID, msg.ID)
	if err != nil {
		s.log.Warnw("post-commit hydration failed", "message", msg.ID, "err", err)
		view = bareView(msg)
	}

	s.emit(ctx, events.EventNewMessage, view)
	s.emitParentUpdate(ctx, p.AuthorID, msg.ParentID)
	if err := s.stream.Publish(ctx, msg.ConversationID.String(), view); err != nil {
		s.log.Warnw("stream publish failed", "message", msg.ID, "err", err)
	}
	return view, nil
}

// ListThread returns top-level messages or the direct replies of parentID,
// newest first, annotated per viewer.
func (s *MessageService) ListThread(ctx context.Context, q repository.ThreadQuery) ([]domain.MessageView, error) {
	rows, err := s.msgs.ListThread(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, rows)
}

func (s *MessageService) GetOne(ctx context.Context, viewerID, messageID uuid.UUID) (*domain.MessageView, error) {
	row, err := s.msgs.GetOne(ctx, viewerID, messageID)
	if err != nil {
		return nil, err
	}
	views, err := s.buildViews(ctx, []repository.MessageRow{*row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update edits the text of the caller's own message. Fetch, authorize, then
// mutate: a wrong conversation id reads as NotFound, a wrong author as
// Forbidden. The HTTP layer unifies the two; logs keep them apart.
func (s *MessageService) Update(ctx context.Context, conversationID, messageID, authorID uuid.UUID, text string) (*domain.MessageView, error) {
	msg, err := s.msgs.GetRaw(ctx, conversationID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID != authorID {
		s.log.Warnw("message update denied", "message", messageID, "author", msg.AuthorID, "caller", authorID)
		return nil, domain.ErrForbidden
	}
	if err := s.msgs.UpdateText(ctx, messageID, text); err != nil {
		return nil, err
	}

	view, err := s.GetOne(ctx, authorID, messageID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.EventUpdateMessage, view)
	return view, nil
}

// Delete hard-deletes the caller's own message, then publishes an update for
// the parent (if any) and exactly one deleteMessageResponse.
func (s *MessageService) Delete(ctx context.Context, conversationID, messageID, authorID uuid.UUID) (uuid.UUID, error) {
	msg, err := s.msgs.GetRaw(ctx, conversationID, messageID)
	if err != nil {
		return uuid.Nil, err
	}
	if msg.AuthorID != authorID {
		s.log.Warnw("message delete denied", "message", messageID, "author", msg.AuthorID, "caller", authorID)
		return uuid.Nil, domain.ErrForbidden
	}
	if err := s.msgs.Delete(ctx, messageID); err != nil {
		return uuid.Nil, err
	}

	s.emitParentUpdate(ctx, authorID, msg.ParentID)

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		s.log.Warnw("delete event author lookup failed", "author", authorID, "err", err)
	}
	payload := domain.MessageDeletedView{
		ID:             messageID,
		ConversationID: conversationID,
		ReplyID:        msg.ParentID,
		Author:         s.pres.Profile(author),
	}
	s.emit(ctx, events.EventDeleteMessage, payload)
	return messageID, nil
}

// bareView projects a committed message without author, attachment or
// thread annotations. Used only when hydration fails after commit.
func bareView(m *domain.Message) *domain.MessageView {
	return &domain.MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		AuthorID:       m.AuthorID,
		ReplyID:        m.ParentID,
		Text:           m.Text,
		IsMine:         true,
		Documents:      []domain.AttachmentView{},
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// emit is fire-and-forget; failures are logged and swallowed.
func (s *MessageService) emit(ctx context.Context, event string, payload any) {
	if s.pub == nil {
		return
	}
	_ = s.pub.Emit(ctx, event, payload, events.NamespaceV1)
}

// emitParentUpdate republishes the parent view after its thread count
// changed. The parent may have been deleted concurrently; that is not an
// error.
func (s *MessageService) emitParentUpdate(ctx context.Context, viewerID uuid.UUID, parentID *uuid.UUID) {
	if parentID == nil {
		return
	}
	parent, err := s.GetOne(ctx, viewerID, *parentID)
	if err != nil {
		s.log.Debugw("parent view refresh skipped", "parent", *parentID, "err", err)
		return
	}
	s.emit(ctx, events.EventUpdateMessage, parent)
}

func (s *MessageService) buildViews(ctx context.Context, rows []repository.MessageRow) ([]domain.MessageView, error) {
	messageIDs := make([]uuid.UUID, 0, len(rows))
	authorIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		messageIDs = append(messageIDs, row.ID)
		authorIDs = append(authorIDs, row.AuthorID)
	}

	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	attachments, err := s.att.ListForMessages(ctx, messageIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.MessageView, 0, len(rows))
	for _, row := range rows {
		view := domain.MessageView{
			ID:             row.ID,
			ConversationID: row.ConversationID,
			AuthorID:       row.AuthorID,
			ReplyID:        row.ParentID,
			Text:           row.Text,
			IsMine:         row.IsMine,
			ThreadCount:    row.ThreadCount,
			Documents:      s.pres.Attachments(attachments[row.ID]),
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
		}
		if u, ok := authors[row.AuthorID]; ok {
			view.Author = s.pres.Profile(&u)
		}
		views = append(views, view)
	}
	return views, nil
}
