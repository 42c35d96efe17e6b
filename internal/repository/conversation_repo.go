package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/capiorg/backend/internal/domain"
)

// ConversationRow is a conversation annotated with the companion participant
// id, computed by a correlated subquery at read time.
type ConversationRow struct {
	ID          uuid.UUID  `gorm:"column:uuid"`
	TypeID      int        `gorm:"column:type_id"`
	ChatID      *uuid.UUID `gorm:"column:chat_id"`
	CompanionID *uuid.UUID `gorm:"column:companion_id"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetPrivateBetween finds the private conversation shared by both users, if
// one exists.
func (r *ConversationRepository) GetPrivateBetween(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error) {
	sub := r.db.Model(&domain.ConversationParticipant{}).
		Select("conversation_id").
		Where("user_id = ?", userB)

	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN users_conversations uc ON uc.conversation_id = conversations.uuid").
		Where("conversations.type_id = ?", domain.ConversationTypePrivate).
		Where("uc.user_id = ?", userA).
		Where("conversations.uuid IN (?)", sub).
		Take(&conv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

// CreatePrivate returns the existing private conversation for the pair or
// creates one with both participant links in a single transaction.
//
// The check-then-insert is not backed by a unique constraint, so two
// concurrent calls for the same pair can still create duplicates. Known
// race, accepted and documented rather than masked.
func (r *ConversationRepository) CreatePrivate(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error) {
	existing, err := r.GetPrivateBetween(ctx, userA, userB)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	conv := domain.Conversation{TypeID: domain.ConversationTypePrivate}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		links := []domain.ConversationParticipant{
			{ConversationID: conv.ID, UserID: userA},
			{ConversationID: conv.ID, UserID: userB},
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

// CreateGroup creates a chat, a group conversation bound to it and the owner
// participant link, atomically.
func (r *ConversationRepository) CreateGroup(ctx context.Context, ownerID uuid.UUID, title string) (*domain.Conversation, error) {
	chat := domain.Chat{Title: title}
	conv := domain.Conversation{TypeID: domain.ConversationTypeGroup}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}
		conv.ChatID = &chat.ID
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		link := domain.ConversationParticipant{ConversationID: conv.ID, UserID: ownerID}
		return tx.Create(&link).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	conv.Chat = &chat
	return &conv, nil
}

const companionSubquery = `(SELECT uc2.user_id FROM users_conversations uc2
 WHERE uc2.conversation_id = conversations.uuid
   AND uc2.user_id <> ?
   AND conversations.type_id = ? LIMIT 1) AS companion_id`

// ListForUser returns every conversation the user participates in, newest
// first. The companion id is resolved per row for private conversations.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]ConversationRow, error) {
	var rows []ConversationRow
	err := r.db.WithContext(ctx).
		Table("conversations").
		Select("conversations.uuid, conversations.type_id, conversations.chat_id, conversations.created_at, conversations.updated_at, "+companionSubquery,
			userID, domain.ConversationTypePrivate).
		Joins("JOIN users_conversations uc ON uc.conversation_id = conversations.uuid").
		Where("uc.user_id = ?", userID).
		Order("conversations.created_at DESC, conversations.uuid DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// GetOneForUser returns a single annotated conversation, or ErrNotFound when
// the conversation is absent or the caller does not participate in it. The
// two cases are indistinguishable on purpose.
func (r *ConversationRepository) GetOneForUser(ctx context.Context, userID, conversationID uuid.UUID) (*ConversationRow, error) {
	var rows []ConversationRow
	err := r.db.WithContext(ctx).
		Table("conversations").
		Select("conversations.uuid, conversations.type_id, conversations.chat_id, conversations.created_at, conversations.updated_at, "+companionSubquery,
			userID, domain.ConversationTypePrivate).
		Joins("JOIN users_conversations uc ON uc.conversation_id = conversations.uuid").
		Where("uc.user_id = ?", userID).
		Where("conversations.uuid = ?", conversationID).
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

// GetChats loads chat metadata for the given ids, keyed by chat id.
func (r *ConversationRepository) GetChats(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Chat, error) {
	out := make(map[uuid.UUID]domain.Chat, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var chats []domain.Chat
	if err := r.db.WithContext(ctx).Where("uuid IN ?", ids).Find(&chats).Error; err != nil {
		return nil, translate(err)
	}
	for _, c := range chats {
		out[c.ID] = c
	}
	return out, nil
}

// Exists reports whether the conversation id is present.
func (r *ConversationRepository) Exists(ctx context.Context, conversationID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Where("uuid = ?", conversationID).
		Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}
