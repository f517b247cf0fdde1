package model

import (
	"errors"
	"time"
)

// Post represents an image post with its denormalized like counter.
// LikesCount must always equal the number of post_likes rows for the post;
// the toggle path updates both inside one transaction and the worker audits
// the counter against the ledger after each toggle event.
type Post struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	Caption    string    `db:"caption" json:"caption"`
	LikesCount int       `db:"likes_count" json:"likes_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"-"`

	// Joined fields (not in posts table)
	Author   *UserSummary `json:"author,omitempty"`
	Comments []Comment    `json:"comments"`
	IsLiked  bool         `json:"is_liked"`
}

// PostThumbnail is a lightweight representation for profile grids.
type PostThumbnail struct {
	ID       int64  `db:"id" json:"id"`
	ImageURL string `db:"image_url" json:"image"`
}

// PostListResponse is the response for GET /posts.
type PostListResponse struct {
	Posts []Post `json:"posts"`
}

// CreatePostRequest carries the fields parsed from the multipart form.
// The image itself is uploaded to object storage before the post row is
// created; ImageURL is the resulting public URL.
type CreatePostRequest struct {
	ImageURL string
	Caption  string
}

// ToggleLikeResponse reports the like state after a toggle, together with
// the post's counter so clients don't have to re-fetch the post.
type ToggleLikeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// Post constraints
const (
	MaxPostCaptionLength = 2200
)

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrCaptionTooLong = errors.New("caption too long")
	ErrImageRequired  = errors.New("image is required")

	// ErrAlreadyLiked / ErrNotLiked surface the ledger's uniqueness
	// invariant: at most one like per (post, user) pair. The toggle treats
	// both as resolved races, not as failures.
	ErrAlreadyLiked = errors.New("post already liked by this user")
	ErrNotLiked     = errors.New("post not liked by this user")
)
