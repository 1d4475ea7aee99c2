package models

import "time"

type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Caption   string    `json:"caption"`
	Media     string    `json:"media,omitempty"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// PostSummary is the post slice nested inside a shared-post message:
// the media reference plus the author's summary.
type PostSummary struct {
	ID     string       `json:"id"`
	Media  string       `json:"media,omitempty"`
	Author *UserSummary `json:"author,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type CreatePostRequest struct {
	Caption string `json:"caption"`
	Media   string `json:"media,omitempty"`
}

type CommentRequest struct {
	Text string `json:"text"`
}
