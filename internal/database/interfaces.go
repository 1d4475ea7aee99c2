package database

import (
	"context"
	"errors"

	"murmur/internal/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyFollowing = errors.New("already following")
)

type UserRepository interface {
	CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserSummary(ctx context.Context, id string) (*models.UserSummary, error)
}

type FollowRepository interface {
	AddFollow(ctx context.Context, followerID, followedID string) error
	RemoveFollow(ctx context.Context, followerID, followedID string) error
}

type PostRepository interface {
	CreatePost(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostSummary(ctx context.Context, id string) (*models.PostSummary, error)
	AddLike(ctx context.Context, postID, userID string) (*models.Post, error)
	RemoveLike(ctx context.Context, postID, userID string) (*models.Post, error)
	AddComment(ctx context.Context, postID, userID, text string) (*models.Post, error)
	ListComments(ctx context.Context, postID string) ([]*models.Comment, error)
}

type ConversationRepository interface {
	// FindOrCreateConversation is idempotent on the participant pair
	// regardless of argument order.
	FindOrCreateConversation(ctx context.Context, a, b string) (*models.Conversation, error)
	FindConversation(ctx context.Context, a, b string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*models.ConversationPreview, error)
}

type MessageRepository interface {
	// InsertMessage persists the message and returns the stored record
	// with its ID and timestamps assigned.
	InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
}

type NotificationRepository interface {
	// InsertNotification persists the notification and returns it with
	// the actor summary populated, ready to dispatch.
	InsertNotification(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string) error
}

type Database interface {
	UserRepository
	FollowRepository
	PostRepository
	ConversationRepository
	MessageRepository
	NotificationRepository
	Close() error
}
