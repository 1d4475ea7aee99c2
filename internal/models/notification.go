package models

import "time"

type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

type Notification struct {
	ID     string           `json:"id"`
	UserID string           `json:"user_id"`
	FromID string           `json:"from_id"`
	Type   NotificationType `json:"type"`
	PostID string           `json:"post_id,omitempty"`
	Read   bool             `json:"read"`
	// Actor summary, populated before the notification is dispatched.
	From      *UserSummary `json:"from,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
