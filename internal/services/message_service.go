package services

import (
	"context"
	"errors"
	"fmt"

	"murmur/internal/database"
	"murmur/internal/models"
	"murmur/internal/realtime"

	"golang.org/x/sync/errgroup"
)

// MessageService runs the write-then-notify flows for direct messages and
// post shares: the durable write happens first, and only a successful write
// is followed by a push. A failed push is never surfaced to the sender.
type MessageService struct {
	db       database.Database
	notifier realtime.Notifier
}

func NewMessageService(db database.Database, notifier realtime.Notifier) *MessageService {
	return &MessageService{
		db:       db,
		notifier: notifier,
	}
}

func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error) {
	conv, err := s.db.FindOrCreateConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation: %w", err)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Type:           models.MessageTypeText,
		Body:           text,
	}
	saved, err := s.db.InsertMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.notifier.NewMessage(receiverID, saved)
	return saved, nil
}

// SharePost delivers a post to each recipient as a shared-post message.
// Recipients are processed concurrently; each gets its own conversation
// (created if absent) and one event carrying the populated post summary.
func (s *MessageService) SharePost(ctx context.Context, senderID, postID string, recipients []string) error {
	if postID == "" || len(recipients) == 0 {
		return fmt.Errorf("post ID and at least one recipient are required")
	}

	summary, err := s.db.GetPostSummary(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to load post: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, receiverID := range recipients {
		receiverID := receiverID
		g.Go(func() error {
			conv, err := s.db.FindOrCreateConversation(ctx, senderID, receiverID)
			if err != nil {
				return fmt.Errorf("failed to resolve conversation: %w", err)
			}

			msg := &models.Message{
				ConversationID: conv.ID,
				SenderID:       senderID,
				ReceiverID:     receiverID,
				Type:           models.MessageTypePost,
				PostID:         postID,
			}
			saved, err := s.db.InsertMessage(ctx, msg)
			if err != nil {
				return fmt.Errorf("failed to share post: %w", err)
			}

			saved.Post = summary
			s.notifier.NewMessage(receiverID, saved)
			return nil
		})
	}

	return g.Wait()
}

func (s *MessageService) Conversations(ctx context.Context, userID string) ([]*models.ConversationPreview, error) {
	return s.db.ListConversations(ctx, userID)
}

// Messages returns the conversation between the two users, oldest first.
// No conversation yet means an empty history, not an error.
func (s *MessageService) Messages(ctx context.Context, userID, otherID string) ([]*models.Message, error) {
	conv, err := s.db.FindConversation(ctx, userID, otherID)
	if errors.Is(err, database.ErrNotFound) {
		return []*models.Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.db.ListMessages(ctx, conv.ID)
}
