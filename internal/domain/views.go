package domain

import (
	"time"

	"github.com/google/uuid"
)

// View DTOs returned by the query side and mirrored by the socket event
// payloads. Computed fields (is_mine, thread_count, companion) are query-time
// projections, never stored.

type UserProfile struct {
	ID        uuid.UUID `json:"uuid"`
	Login     string    `json:"login"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	IsOnline  *bool     `json:"is_online,omitempty"`
}

type AttachmentView struct {
	ID         uuid.UUID `json:"uuid"`
	DocumentID uuid.UUID `json:"document_id"`
	URL        string    `json:"url"`
	Meta       string    `json:"meta"`
}

type MessageView struct {
	ID             uuid.UUID        `json:"uuid"`
	ConversationID uuid.UUID        `json:"conversation_id"`
	AuthorID       uuid.UUID        `json:"author_id"`
	ReplyID        *uuid.UUID       `json:"reply_uuid,omitempty"`
	Text           string           `json:"text"`
	IsMine         bool             `json:"is_mine"`
	ThreadCount    int64            `json:"thread_count"`
	Author         *UserProfile     `json:"author,omitempty"`
	Documents      []AttachmentView `json:"documents"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type ConversationView struct {
	ID        uuid.UUID    `json:"uuid"`
	TypeID    int          `json:"type_id"`
	Type      string       `json:"type"`
	Companion *UserProfile `json:"companion,omitempty"`
	Chat      *Chat        `json:"chat,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// MessageDeletedView is the payload of a delete event: enough for a
// subscriber to drop the message from its local state.
type MessageDeletedView struct {
	ID             uuid.UUID    `json:"uuid"`
	ConversationID uuid.UUID    `json:"conversation_id"`
	ReplyID        *uuid.UUID   `json:"reply_uuid,omitempty"`
	Author         *UserProfile `json:"author,omitempty"`
}
