package models

import "time"

type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypePost MessageType = "post"
)

type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	ReceiverID     string      `json:"receiver_id"`
	Type           MessageType `json:"type"`
	Body           string      `json:"body,omitempty"`
	PostID         string      `json:"post_id,omitempty"`
	// Populated for shared-post messages before they go out over the wire.
	Post      *PostSummary `json:"post,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type Conversation struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConversationPreview is what the conversation list returns: the
// conversation plus the other participant's summary.
type ConversationPreview struct {
	ID               string       `json:"id"`
	OtherParticipant *UserSummary `json:"other_participant"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

type SharePostRequest struct {
	PostID     string   `json:"post_id"`
	Recipients []string `json:"recipients"`
}
