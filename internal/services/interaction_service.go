package services

import (
	"context"
	"fmt"

	"murmur/internal/database"
	"murmur/internal/models"
	"murmur/internal/realtime"
)

// InteractionService runs the like, comment and follow flows. Each one is
// write-then-notify: the interaction is persisted first, and a notification
// is created and dispatched only when the actor is not the target. Acting on
// your own content never produces a notification.
type InteractionService struct {
	db       database.Database
	notifier realtime.Notifier
}

func NewInteractionService(db database.Database, notifier realtime.Notifier) *InteractionService {
	return &InteractionService{
		db:       db,
		notifier: notifier,
	}
}

func (s *InteractionService) LikePost(ctx context.Context, actorID, postID string) (*models.Post, error) {
	post, err := s.db.AddLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	if post.UserID != actorID {
		if err := s.notify(ctx, post.UserID, actorID, models.NotificationLike, post.ID); err != nil {
			return nil, err
		}
	}

	return post, nil
}

func (s *InteractionService) UnlikePost(ctx context.Context, actorID, postID string) (*models.Post, error) {
	return s.db.RemoveLike(ctx, postID, actorID)
}

func (s *InteractionService) CommentOnPost(ctx context.Context, actorID, postID, text string) ([]*models.Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("comment text is required")
	}

	post, err := s.db.AddComment(ctx, postID, actorID, text)
	if err != nil {
		return nil, err
	}

	if post.UserID != actorID {
		if err := s.notify(ctx, post.UserID, actorID, models.NotificationComment, post.ID); err != nil {
			return nil, err
		}
	}

	return s.db.ListComments(ctx, postID)
}

func (s *InteractionService) FollowUser(ctx context.Context, actorID, targetID string) error {
	if _, err := s.db.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.db.AddFollow(ctx, actorID, targetID); err != nil {
		return err
	}

	if targetID != actorID {
		if err := s.notify(ctx, targetID, actorID, models.NotificationFollow, ""); err != nil {
			return err
		}
	}

	return nil
}

func (s *InteractionService) UnfollowUser(ctx context.Context, actorID, targetID string) error {
	return s.db.RemoveFollow(ctx, actorID, targetID)
}

func (s *InteractionService) Notifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.db.ListNotifications(ctx, userID)
}

func (s *InteractionService) MarkNotificationsRead(ctx context.Context, userID string) error {
	return s.db.MarkNotificationsRead(ctx, userID)
}

// notify persists the notification record and pushes it to the target.
// The insert returns the record with the actor summary populated; a store
// failure here propagates and the push never happens.
func (s *InteractionService) notify(ctx context.Context, targetID, actorID string, kind models.NotificationType, postID string) error {
	n := &models.Notification{
		UserID: targetID,
		FromID: actorID,
		Type:   kind,
		PostID: postID,
	}
	saved, err := s.db.InsertNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	s.notifier.NewNotification(targetID, saved)
	return nil
}
