package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"murmur/internal/database"
	"murmur/internal/models"
)

// fakeDB is an in-memory Database with per-call fault injection.
type fakeDB struct {
	mu sync.Mutex

	posts map[string]*models.Post
	users map[string]*models.User

	conversations []*models.Conversation
	messages      []*models.Message
	notifications []*models.Notification
	follows       map[string]bool

	failConversation error
	failMessage      error
	failNotification error
	failLike         error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		posts:   make(map[string]*models.Post),
		users:   make(map[string]*models.User),
		follows: make(map[string]bool),
	}
}

func (f *fakeDB) addUser(id, name string) {
	f.users[id] = &models.User{ID: id, Name: name}
}

func (f *fakeDB) addPost(id, ownerID string) {
	f.posts[id] = &models.Post{ID: id, UserID: ownerID}
}

func (f *fakeDB) CreateUser(ctx context.Context, req *models.RegisterRequest, hash string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, database.ErrNotFound
}

func (f *fakeDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (f *fakeDB) GetUserSummary(ctx context.Context, id string) (*models.UserSummary, error) {
	u, err := f.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.UserSummary{ID: u.ID, Name: u.Name}, nil
}

func (f *fakeDB) AddFollow(ctx context.Context, followerID, followedID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := followerID + "/" + followedID
	if f.follows[key] {
		return database.ErrAlreadyFollowing
	}
	f.follows[key] = true
	return nil
}

func (f *fakeDB) RemoveFollow(ctx context.Context, followerID, followedID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.follows, followerID+"/"+followedID)
	return nil
}

func (f *fakeDB) CreatePost(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (f *fakeDB) GetPostSummary(ctx context.Context, id string) (*models.PostSummary, error) {
	p, err := f.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	author, err := f.GetUserSummary(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &models.PostSummary{ID: p.ID, Author: author}, nil
}

func (f *fakeDB) AddLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	if f.failLike != nil {
		return nil, f.failLike
	}
	return f.GetPostByID(ctx, postID)
}

func (f *fakeDB) RemoveLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return f.GetPostByID(ctx, postID)
}

func (f *fakeDB) AddComment(ctx context.Context, postID, userID, text string) (*models.Post, error) {
	return f.GetPostByID(ctx, postID)
}

func (f *fakeDB) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	return nil, nil
}

func (f *fakeDB) FindOrCreateConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	if f.failConversation != nil {
		return nil, f.failConversation
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if b < a {
		a, b = b, a
	}
	for _, c := range f.conversations {
		if c.Participants[0] == a && c.Participants[1] == b {
			return c, nil
		}
	}
	conv := &models.Conversation{
		ID:           fmt.Sprintf("conv-%d", len(f.conversations)+1),
		Participants: [2]string{a, b},
	}
	f.conversations = append(f.conversations, conv)
	return conv, nil
}

func (f *fakeDB) FindConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b < a {
		a, b = b, a
	}
	for _, c := range f.conversations {
		if c.Participants[0] == a && c.Participants[1] == b {
			return c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeDB) ListConversations(ctx context.Context, userID string) ([]*models.ConversationPreview, error) {
	return nil, nil
}

func (f *fakeDB) InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if f.failMessage != nil {
		return nil, f.failMessage
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *msg
	saved.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	f.messages = append(f.messages, &saved)
	return &saved, nil
}

func (f *fakeDB) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDB) InsertNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if f.failNotification != nil {
		return nil, f.failNotification
	}
	from, err := f.GetUserSummary(ctx, n.FromID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *n
	saved.ID = fmt.Sprintf("notif-%d", len(f.notifications)+1)
	saved.From = from
	f.notifications = append(f.notifications, &saved)
	return &saved, nil
}

func (f *fakeDB) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeDB) MarkNotificationsRead(ctx context.Context, userID string) error {
	return nil
}

func (f *fakeDB) Close() error { return nil }

// recordingNotifier captures every push so tests can assert on exactly
// what would have gone out over the wire.
type recordingNotifier struct {
	mu            sync.Mutex
	messages      []deliveredMessage
	notifications []deliveredNotification
}

type deliveredMessage struct {
	recipient string
	msg       *models.Message
}

type deliveredNotification struct {
	recipient string
	n         *models.Notification
}

func (r *recordingNotifier) NewMessage(recipient string, msg *models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, deliveredMessage{recipient: recipient, msg: msg})
}

func (r *recordingNotifier) NewNotification(recipient string, n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, deliveredNotification{recipient: recipient, n: n})
}

func (r *recordingNotifier) deliveredTo() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, d := range r.messages {
		out = append(out, d.recipient)
	}
	sort.Strings(out)
	return out
}

func TestMessageService_SendMessage(t *testing.T) {
	db := newFakeDB()
	db.addUser("alice", "Alice")
	db.addUser("bob", "Bob")
	notifier := &recordingNotifier{}
	svc := NewMessageService(db, notifier)

	msg, err := svc.SendMessage(context.Background(), "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.ID == "" || msg.Body != "hello" || msg.Type != models.MessageTypeText {
		t.Errorf("unexpected message: %+v", msg)
	}

	if len(db.messages) != 1 {
		t.Fatalf("store holds %d messages, want 1", len(db.messages))
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("notifier saw %d messages, want 1", len(notifier.messages))
	}
	if got := notifier.messages[0]; got.recipient != "bob" || got.msg.SenderID != "alice" {
		t.Errorf("delivered to %q from %q, want bob from alice", got.recipient, got.msg.SenderID)
	}
}

func TestMessageService_SendMessage_ReusesConversation(t *testing.T) {
	db := newFakeDB()
	notifier := &recordingNotifier{}
	svc := NewMessageService(db, notifier)

	first, err := svc.SendMessage(context.Background(), "alice", "bob", "one")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	// Reply goes through the same conversation regardless of direction
	second, err := svc.SendMessage(context.Background(), "bob", "alice", "two")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if first.ConversationID != second.ConversationID {
		t.Errorf("conversations differ: %q vs %q", first.ConversationID, second.ConversationID)
	}
	if len(db.conversations) != 1 {
		t.Errorf("store holds %d conversations, want 1", len(db.conversations))
	}

	msgs, _ := svc.Messages(context.Background(), "alice", "bob")
	if len(msgs) != 2 {
		t.Errorf("conversation holds %d messages, want 2", len(msgs))
	}
}

func TestMessageService_SendMessage_WriteFailureSkipsDispatch(t *testing.T) {
	t.Run("message insert fails", func(t *testing.T) {
		db := newFakeDB()
		db.failMessage = errors.New("store unreachable")
		notifier := &recordingNotifier{}
		svc := NewMessageService(db, notifier)

		if _, err := svc.SendMessage(context.Background(), "alice", "bob", "hello"); err == nil {
			t.Fatal("expected error, got nil")
		}
		if len(notifier.messages) != 0 {
			t.Errorf("notifier saw %d messages after failed write, want 0", len(notifier.messages))
		}
	})

	t.Run("conversation upsert fails", func(t *testing.T) {
		db := newFakeDB()
		db.failConversation = errors.New("store unreachable")
		notifier := &recordingNotifier{}
		svc := NewMessageService(db, notifier)

		if _, err := svc.SendMessage(context.Background(), "alice", "bob", "hello"); err == nil {
			t.Fatal("expected error, got nil")
		}
		if len(db.messages) != 0 {
			t.Errorf("store holds %d messages, want 0", len(db.messages))
		}
		if len(notifier.messages) != 0 {
			t.Errorf("notifier saw %d messages after failed write, want 0", len(notifier.messages))
		}
	})
}

func TestMessageService_SharePost(t *testing.T) {
	db := newFakeDB()
	db.addUser("alice", "Alice")
	db.addPost("post-1", "alice")
	notifier := &recordingNotifier{}
	svc := NewMessageService(db, notifier)

	err := svc.SharePost(context.Background(), "alice", "post-1", []string{"bob", "carol"})
	if err != nil {
		t.Fatalf("SharePost failed: %v", err)
	}

	if len(db.conversations) != 2 {
		t.Errorf("store holds %d conversations, want 2", len(db.conversations))
	}
	if len(db.messages) != 2 {
		t.Errorf("store holds %d messages, want 2", len(db.messages))
	}

	want := []string{"bob", "carol"}
	got := notifier.deliveredTo()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("delivered to %v, want %v", got, want)
	}
	for _, d := range notifier.messages {
		if d.msg.Type != models.MessageTypePost {
			t.Errorf("message type = %q, want %q", d.msg.Type, models.MessageTypePost)
		}
		if d.msg.Post == nil || d.msg.Post.Author == nil || d.msg.Post.Author.Name != "Alice" {
			t.Errorf("post summary not populated: %+v", d.msg.Post)
		}
	}
}

func TestMessageService_SharePost_MissingPost(t *testing.T) {
	db := newFakeDB()
	notifier := &recordingNotifier{}
	svc := NewMessageService(db, notifier)

	if err := svc.SharePost(context.Background(), "alice", "nope", []string{"bob"}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(notifier.messages) != 0 {
		t.Errorf("notifier saw %d messages, want 0", len(notifier.messages))
	}
}

func TestInteractionService_LikePost(t *testing.T) {
	t.Run("liking another user's post notifies the owner", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		db.addUser("bob", "Bob")
		db.addPost("post-1", "bob")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if _, err := svc.LikePost(context.Background(), "alice", "post-1"); err != nil {
			t.Fatalf("LikePost failed: %v", err)
		}

		if len(db.notifications) != 1 {
			t.Fatalf("store holds %d notifications, want 1", len(db.notifications))
		}
		n := db.notifications[0]
		if n.UserID != "bob" || n.FromID != "alice" || n.Type != models.NotificationLike {
			t.Errorf("unexpected notification: %+v", n)
		}

		if len(notifier.notifications) != 1 {
			t.Fatalf("notifier saw %d notifications, want 1", len(notifier.notifications))
		}
		d := notifier.notifications[0]
		if d.recipient != "bob" {
			t.Errorf("delivered to %q, want bob", d.recipient)
		}
		if d.n.From == nil || d.n.From.Name != "Alice" {
			t.Errorf("actor summary not populated: %+v", d.n.From)
		}
	})

	t.Run("liking your own post is silent", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		db.addPost("post-1", "alice")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if _, err := svc.LikePost(context.Background(), "alice", "post-1"); err != nil {
			t.Fatalf("LikePost failed: %v", err)
		}
		if len(db.notifications) != 0 {
			t.Errorf("store holds %d notifications for self-like, want 0", len(db.notifications))
		}
		if len(notifier.notifications) != 0 {
			t.Errorf("notifier saw %d notifications for self-like, want 0", len(notifier.notifications))
		}
	})

	t.Run("write failure propagates and skips dispatch", func(t *testing.T) {
		db := newFakeDB()
		db.addPost("post-1", "bob")
		db.failLike = errors.New("store unreachable")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if _, err := svc.LikePost(context.Background(), "alice", "post-1"); err == nil {
			t.Fatal("expected error, got nil")
		}
		if len(notifier.notifications) != 0 {
			t.Errorf("notifier saw %d notifications after failed write, want 0", len(notifier.notifications))
		}
	})

	t.Run("notification insert failure propagates", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		db.addPost("post-1", "bob")
		db.failNotification = errors.New("store unreachable")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if _, err := svc.LikePost(context.Background(), "alice", "post-1"); err == nil {
			t.Fatal("expected error, got nil")
		}
		if len(notifier.notifications) != 0 {
			t.Errorf("notifier saw %d notifications after failed insert, want 0", len(notifier.notifications))
		}
	})
}

func TestInteractionService_CommentOnPost(t *testing.T) {
	t.Run("commenting on another user's post notifies the owner", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		db.addUser("bob", "Bob")
		db.addPost("post-1", "bob")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if _, err := svc.CommentOnPost(context.Background(), "alice", "post-1", "nice"); err != nil {
			t.Fatalf("CommentOnPost failed: %v", err)
		}
		if len(db.notifications) != 1 || db.notifications[0].Type != models.NotificationComment {
			t.Errorf("unexpected notifications: %+v", db.notifications)
		}
	})

	t.Run("commenting on your own post is silent", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		db.addPost("post-1", "alice")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if _, err := svc.CommentOnPost(context.Background(), "alice", "post-1", "nice"); err != nil {
			t.Fatalf("CommentOnPost failed: %v", err)
		}
		if len(db.notifications) != 0 || len(notifier.notifications) != 0 {
			t.Error("self-comment produced a notification")
		}
	})

	t.Run("empty comment is rejected", func(t *testing.T) {
		db := newFakeDB()
		db.addPost("post-1", "bob")
		svc := NewInteractionService(db, &recordingNotifier{})

		if _, err := svc.CommentOnPost(context.Background(), "alice", "post-1", ""); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestInteractionService_FollowUser(t *testing.T) {
	t.Run("following notifies the target", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		db.addUser("bob", "Bob")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if err := svc.FollowUser(context.Background(), "alice", "bob"); err != nil {
			t.Fatalf("FollowUser failed: %v", err)
		}
		if len(db.notifications) != 1 || db.notifications[0].Type != models.NotificationFollow {
			t.Errorf("unexpected notifications: %+v", db.notifications)
		}
		if len(notifier.notifications) != 1 || notifier.notifications[0].recipient != "bob" {
			t.Errorf("unexpected deliveries: %+v", notifier.notifications)
		}
	})

	t.Run("following yourself is silent", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if err := svc.FollowUser(context.Background(), "alice", "alice"); err != nil {
			t.Fatalf("FollowUser failed: %v", err)
		}
		if len(db.notifications) != 0 || len(notifier.notifications) != 0 {
			t.Error("self-follow produced a notification")
		}
	})

	t.Run("duplicate follow is rejected without dispatch", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		db.addUser("bob", "Bob")
		notifier := &recordingNotifier{}
		svc := NewInteractionService(db, notifier)

		if err := svc.FollowUser(context.Background(), "alice", "bob"); err != nil {
			t.Fatalf("FollowUser failed: %v", err)
		}
		err := svc.FollowUser(context.Background(), "alice", "bob")
		if !errors.Is(err, database.ErrAlreadyFollowing) {
			t.Fatalf("err = %v, want ErrAlreadyFollowing", err)
		}
		if len(notifier.notifications) != 1 {
			t.Errorf("notifier saw %d notifications, want 1", len(notifier.notifications))
		}
	})

	t.Run("unknown target is rejected", func(t *testing.T) {
		db := newFakeDB()
		db.addUser("alice", "Alice")
		svc := NewInteractionService(db, &recordingNotifier{})

		err := svc.FollowUser(context.Background(), "alice", "ghost")
		if !errors.Is(err, database.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}
