package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationType int

const (
	ConversationTypePrivate ConversationType = 1
	ConversationTypeGroup   ConversationType = 3
)

func (t ConversationType) IsValid() bool {
	switch t {
	case ConversationTypePrivate, ConversationTypeGroup:
		return true
	}
	return false
}

func (t ConversationType) String() string {
	if t == ConversationTypePrivate {
		return "PRIVATE"
	}
	return "PUBLIC"
}

// Chat carries the metadata of a group conversation (title, optional avatar
// document). Private conversations have no chat row.
type Chat struct {
	ID         uuid.UUID  `gorm:"column:uuid;type:char(36);primaryKey" json:"uuid"`
	Title      string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	DocumentID *uuid.UUID `gorm:"column:document_id;type:char(36)" json:"document_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Chat) TableName() string { return "chats" }

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		c.ID = id
	}
	return nil
}

type Conversation struct {
	ID        uuid.UUID        `gorm:"column:uuid;type:char(36);primaryKey" json:"uuid"`
	TypeID    ConversationType `gorm:"column:type_id;not null" json:"type_id"`
	ChatID    *uuid.UUID       `gorm:"column:chat_id;type:char(36)" json:"chat_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Chat *Chat `gorm:"foreignKey:ChatID;references:ID" json:"chat,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		c.ID = id
	}
	return nil
}

// ConversationParticipant links a user into a conversation and authorizes
// them to read and write within it.
type ConversationParticipant struct {
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:char(36);primaryKey" json:"conversation_id"`
	UserID         uuid.UUID `gorm:"column:user_id;type:char(36);primaryKey" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ConversationParticipant) TableName() string { return "users_conversations" }
