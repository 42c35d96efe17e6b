package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/capiorg/backend/internal/domain"
)

const DefaultThreadLimit = 20

// MessageRow is a message annotated with the per-viewer computed fields.
// Both are evaluated inside the query so they always reflect current data.
type MessageRow struct {
	ID             uuid.UUID  `gorm:"column:uuid"`
	ConversationID uuid.UUID  `gorm:"column:conversation_id"`
	AuthorID       uuid.UUID  `gorm:"column:author_id"`
	ParentID       *uuid.UUID `gorm:"column:parent_id"`
	Text           string     `gorm:"column:text"`
	ThreadCount    int64      `gorm:"column:thread_count"`
	IsMine         bool       `gorm:"column:is_mine"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

type SendParams struct {
	ConversationID uuid.UUID
	AuthorID       uuid.UUID
	Text           string
	ReplyTo        *uuid.UUID
	DocumentIDs    []uuid.UUID
}

type ThreadQuery struct {
	ViewerID       uuid.UUID
	ConversationID uuid.UUID
	ParentID       *uuid.UUID
	Limit          int
	Offset         int
}

type MessageRepository struct {
	db          *gorm.DB
	attachments *AttachmentRepository
}

func NewMessageRepository(db *gorm.DB, attachments *AttachmentRepository) *MessageRepository {
	return &MessageRepository{db: db, attachments: attachments}
}

// Send inserts a message in a single transaction: the author is linked into
// the conversation if not yet a participant (self-healing join), the parent
// is checked to belong to the same conversation, and attachments are linked
// idempotently. Any failure rolls the whole unit back.
func (r *MessageRepository) Send(ctx context.Context, p SendParams) (*domain.Message, error) {
	msg := domain.Message{
		ConversationID: p.ConversationID,
		AuthorID:       p.AuthorID,
		ParentID:       p.ReplyTo,
		Text:           p.Text,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link domain.ConversationParticipant
		err := tx.Where("conversation_id = ? AND user_id = ?", p.ConversationID, p.AuthorID).
			Take(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			link = domain.ConversationParticipant{ConversationID: p.ConversationID, UserID: p.AuthorID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if p.ReplyTo != nil {
			var parent domain.Message
			if err := tx.Where("uuid = ?", *p.ReplyTo).Take(&parent).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: parent message", domain.ErrForeignKey)
				}
				return err
			}
			if parent.ConversationID != p.ConversationID {
				return fmt.Errorf("%w: parent message belongs to another conversation", domain.ErrForeignKey)
			}
		}

		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		_, err = r.attachments.Link(tx, msg.ID, p.DocumentIDs)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

const annotatedColumns = `messages.uuid, messages.conversation_id, messages.author_id,
 messages.parent_id, messages.text, messages.created_at, messages.updated_at,
 (SELECT COUNT(*) FROM messages m2 WHERE m2.parent_id = messages.uuid) AS thread_count,
 (messages.author_id = ?) AS is_mine`

// ListThread returns top-level messages (nil parent) or the direct replies
// of the given parent, newest first.
func (r *MessageRepository) ListThread(ctx context.Context, q ThreadQuery) ([]MessageRow, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultThreadLimit
	}

	db := r.db.WithContext(ctx).
		Table("messages").
		Select(annotatedColumns, q.ViewerID).
		Where("messages.conversation_id = ?", q.ConversationID)
	if q.ParentID != nil {
		db = db.Where("messages.parent_id = ?", *q.ParentID)
	} else {
		db = db.Where("messages.parent_id IS NULL")
	}

	var rows []MessageRow
	err := db.Order("messages.created_at DESC, messages.uuid DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// GetOne returns a single annotated message.
func (r *MessageRepository) GetOne(ctx context.Context, viewerID, messageID uuid.UUID) (*MessageRow, error) {
	var rows []MessageRow
	err := r.db.WithContext(ctx).
		Table("messages").
		Select(annotatedColumns, viewerID).
		Where("messages.uuid = ?", messageID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return &rows[0], nil
}

// GetRaw fetches the bare message row scoped to a conversation. Used by the
// services for the explicit fetch-authorize-mutate sequence.
func (r *MessageRepository) GetRaw(ctx context.Context, conversationID, messageID uuid.UUID) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND uuid = ?", conversationID, messageID).
		Take(&msg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// UpdateText changes the message body only.
func (r *MessageRepository) UpdateText(ctx context.Context, messageID uuid.UUID, text string) error {
	res := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("uuid = ?", messageID).
		Update("text", text)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete hard-deletes the message together with its attachment links.
func (r *MessageRepository) Delete(ctx context.Context, messageID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", messageID).
			Delete(&domain.MessageAttachment{}).Error; err != nil {
			return err
		}
		res := tx.Where("uuid = ?", messageID).Delete(&domain.Message{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return translate(err)
}
