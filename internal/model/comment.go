package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post. Comments are append-only: there
// is no edit or delete surface.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	PostID    int64        `db:"post_id" json:"post_id"`
	UserID    int64        `db:"user_id" json:"-"`
	Comment   string       `db:"comment" json:"comment"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for POST /posts/{id}/comments.
type CreateCommentRequest struct {
	Comment string `json:"comment"`
}

// CommentListResponse is the response for GET /posts/{id}/comments.
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentRequired = errors.New("comment text is required")
	ErrCommentTooLong  = errors.New("comment text too long")
)
