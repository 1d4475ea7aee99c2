package database

import (
	"context"
	"errors"
	"fmt"

	"murmur/internal/models"
	"murmur/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// User Repository Implementation
func (db *PostgresDB) CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, name, email, profile_picture, bio, created_at`

	user := &models.User{PasswordHash: passwordHash}
	err := db.pool.QueryRow(ctx, query, uuid.NewString(), req.Name, req.Email, passwordHash).Scan(
		&user.ID, &user.Name, &user.Email, &user.ProfilePicture, &user.Bio, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, profile_picture, bio, created_at FROM users WHERE email = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.ProfilePicture, &user.Bio, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, email, profile_picture, bio, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.ProfilePicture, &user.Bio, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) GetUserSummary(ctx context.Context, id string) (*models.UserSummary, error) {
	query := `SELECT id, name, profile_picture FROM users WHERE id = $1`

	s := &models.UserSummary{}
	err := db.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.ProfilePicture)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Follow Repository Implementation
func (db *PostgresDB) AddFollow(ctx context.Context, followerID, followedID string) error {
	query := `
		INSERT INTO follows (follower_id, followed_id, created_at) VALUES ($1, $2, NOW())
		ON CONFLICT (follower_id, followed_id) DO NOTHING`

	tag, err := db.pool.Exec(ctx, query, followerID, followedID)
	if err != nil {
		return fmt.Errorf("failed to add follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyFollowing
	}
	return nil
}

func (db *PostgresDB) RemoveFollow(ctx context.Context, followerID, followedID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`
	_, err := db.pool.Exec(ctx, query, followerID, followedID)
	return err
}

// Post Repository Implementation
func (db *PostgresDB) CreatePost(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error) {
	query := `
		INSERT INTO posts (id, user_id, caption, media, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, user_id, caption, media, created_at`

	post := &models.Post{}
	err := db.pool.QueryRow(ctx, query, uuid.NewString(), userID, req.Caption, req.Media).Scan(
		&post.ID, &post.UserID, &post.Caption, &post.Media, &post.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (db *PostgresDB) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.caption, p.media, p.created_at,
		       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
		FROM posts p WHERE p.id = $1`

	post := &models.Post{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.UserID, &post.Caption, &post.Media, &post.CreatedAt, &post.Likes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (db *PostgresDB) GetPostSummary(ctx context.Context, id string) (*models.PostSummary, error) {
	query := `
		SELECT p.id, p.media, u.id, u.name, u.profile_picture
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1`

	s := &models.PostSummary{Author: &models.UserSummary{}}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Media, &s.Author.ID, &s.Author.Name, &s.Author.ProfilePicture,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (db *PostgresDB) AddLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	post, err := db.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	// Idempotent: liking twice leaves one like
	query := `
		INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, NOW())
		ON CONFLICT (post_id, user_id) DO NOTHING`

	tag, err := db.pool.Exec(ctx, query, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to like post: %w", err)
	}
	post.Likes += int(tag.RowsAffected())

	return post, nil
}

func (db *PostgresDB) RemoveLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	post, err := db.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	query := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`
	tag, err := db.pool.Exec(ctx, query, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to unlike post: %w", err)
	}
	post.Likes -= int(tag.RowsAffected())

	return post, nil
}

func (db *PostgresDB) AddComment(ctx context.Context, postID, userID, text string) (*models.Post, error) {
	post, err := db.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO post_comments (id, post_id, user_id, text, created_at) VALUES ($1, $2, $3, $4, NOW())`
	if _, err := db.pool.Exec(ctx, query, uuid.NewString(), postID, userID, text); err != nil {
		return nil, fmt.Errorf("failed to comment on post: %w", err)
	}

	return post, nil
}

func (db *PostgresDB) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, u.name, u.profile_picture, c.text, c.created_at
		FROM post_comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC`

	rows, err := db.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Name, &c.Avatar, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// Conversation Repository Implementation

// participantPair normalizes a participant pair so the same two users
// always map to the same conversation row.
func participantPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func (db *PostgresDB) FindOrCreateConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	pa, pb := participantPair(a, b)

	query := `
		INSERT INTO conversations (id, participant_a, participant_b, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (participant_a, participant_b) DO UPDATE SET participant_a = EXCLUDED.participant_a
		RETURNING id, participant_a, participant_b, created_at`

	conv := &models.Conversation{}
	err := db.pool.QueryRow(ctx, query, uuid.NewString(), pa, pb).Scan(
		&conv.ID, &conv.Participants[0], &conv.Participants[1], &conv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conv, nil
}

func (db *PostgresDB) FindConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	pa, pb := participantPair(a, b)

	query := `
		SELECT id, participant_a, participant_b, created_at
		FROM conversations WHERE participant_a = $1 AND participant_b = $2`

	conv := &models.Conversation{}
	err := db.pool.QueryRow(ctx, query, pa, pb).Scan(
		&conv.ID, &conv.Participants[0], &conv.Participants[1], &conv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return conv, nil
}

func (db *PostgresDB) ListConversations(ctx context.Context, userID string) ([]*models.ConversationPreview, error) {
	query := `
		SELECT c.id, u.id, u.name, u.profile_picture
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.participant_a = $1 THEN c.participant_b ELSE c.participant_a END
		WHERE c.participant_a = $1 OR c.participant_b = $1
		ORDER BY c.created_at DESC`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var previews []*models.ConversationPreview
	for rows.Next() {
		p := &models.ConversationPreview{OtherParticipant: &models.UserSummary{}}
		if err := rows.Scan(&p.ID, &p.OtherParticipant.ID, &p.OtherParticipant.Name, &p.OtherParticipant.ProfilePicture); err != nil {
			return nil, err
		}
		previews = append(previews, p)
	}

	return previews, rows.Err()
}

// Message Repository Implementation
func (db *PostgresDB) InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, message_type, body, post_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NOW())
		RETURNING id, created_at`

	saved := *msg
	err := db.pool.QueryRow(ctx, query,
		uuid.NewString(), msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Type, msg.Body, msg.PostID,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return &saved, nil
}

func (db *PostgresDB) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.message_type,
		       m.body, COALESCE(m.post_id, ''), m.created_at,
		       p.media, u.id, u.name, u.profile_picture
		FROM messages m
		LEFT JOIN posts p ON m.post_id = p.id
		LEFT JOIN users u ON p.user_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at`

	rows, err := db.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		var media, authorID, authorName, authorAvatar *string
		err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID, &msg.Type,
			&msg.Body, &msg.PostID, &msg.CreatedAt,
			&media, &authorID, &authorName, &authorAvatar,
		)
		if err != nil {
			return nil, err
		}
		if msg.Type == models.MessageTypePost && authorID != nil {
			msg.Post = &models.PostSummary{
				ID: msg.PostID,
				Author: &models.UserSummary{
					ID:   *authorID,
					Name: *authorName,
				},
			}
			if media != nil {
				msg.Post.Media = *media
			}
			if authorAvatar != nil {
				msg.Post.Author.ProfilePicture = *authorAvatar
			}
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// Notification Repository Implementation
func (db *PostgresDB) InsertNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (id, user_id, from_id, type, post_id, read, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), false, NOW())
		RETURNING id, created_at`

	saved := *n
	err := db.pool.QueryRow(ctx, query,
		uuid.NewString(), n.UserID, n.FromID, n.Type, n.PostID,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	// Populate the actor summary so the record is ready to dispatch
	from, err := db.GetUserSummary(ctx, n.FromID)
	if err != nil {
		return nil, fmt.Errorf("failed to populate notification actor: %w", err)
	}
	saved.From = from

	return &saved, nil
}

func (db *PostgresDB) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	query := `
		SELECT n.id, n.user_id, n.from_id, n.type, COALESCE(n.post_id, ''), n.read, n.created_at,
		       u.name, u.profile_picture
		FROM notifications n
		JOIN users u ON n.from_id = u.id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{From: &models.UserSummary{}}
		err := rows.Scan(
			&n.ID, &n.UserID, &n.FromID, &n.Type, &n.PostID, &n.Read, &n.CreatedAt,
			&n.From.Name, &n.From.ProfilePicture,
		)
		if err != nil {
			return nil, err
		}
		n.From.ID = n.FromID
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (db *PostgresDB) MarkNotificationsRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`
	_, err := db.pool.Exec(ctx, query, userID)
	return err
}
