package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message belongs to exactly one conversation. ParentID enables threading;
// the invariant "parent belongs to the same conversation" is enforced at
// write time by the repository.
type Message struct {
	ID             uuid.UUID  `gorm:"column:uuid;type:char(36);primaryKey" json:"uuid"`
	ConversationID uuid.UUID  `gorm:"column:conversation_id;type:char(36);not null;index" json:"conversation_id"`
	AuthorID       uuid.UUID  `gorm:"column:author_id;type:char(36);not null" json:"author_id"`
	ParentID       *uuid.UUID `gorm:"column:parent_id;type:char(36);index" json:"parent_id,omitempty"`
	Text           string     `gorm:"column:text;type:varchar(2048)" json:"text"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id
	}
	return nil
}

// MessageAttachment links a message to an uploaded document. The pair is
// unique so repeated links of the same document are absorbed, not duplicated.
type MessageAttachment struct {
	ID         uuid.UUID `gorm:"column:uuid;type:char(36);primaryKey" json:"uuid"`
	MessageID  uuid.UUID `gorm:"column:message_id;type:char(36);not null;uniqueIndex:idx_message_document" json:"message_id"`
	DocumentID uuid.UUID `gorm:"column:document_id;type:char(36);not null;uniqueIndex:idx_message_document" json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MessageAttachment) TableName() string { return "messages_documents" }

func (a *MessageAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a.ID = id
	}
	return nil
}

// Document is an opaque reference to a file owned by the external storage
// service; only the identifier is stored here.
type Document struct {
	ID               uuid.UUID `gorm:"column:uuid;type:char(36);primaryKey" json:"uuid"`
	OriginalFilename string    `gorm:"column:original_filename;type:varchar(255)" json:"original_filename"`
	SizeBytes        int64     `gorm:"column:size_bytes" json:"size_bytes"`
	MimeType         string    `gorm:"column:mime_type;type:varchar(255)" json:"mime_type"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Document) TableName() string { return "documents" }
