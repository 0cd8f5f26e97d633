package model

import "time"

// Message roles.
const (
	RoleUser      = "USER"
	RoleAssistant = "ASSISTANT"
)

type Conversation struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	PublicID    string    `json:"public_id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ConversationMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationAttachment struct {
	ID          int64     `json:"id"`
	MessageID   int64     `json:"message_id"`
	BlobKey     string    `json:"blob_key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
