package model

import (
	"errors"
	"time"
)

// StoryTTL is how long a story stays visible. The expiry is stamped once at
// creation and never extended.
const StoryTTL = 24 * time.Hour

// Story represents an ephemeral image owned by a user. Rows past ExpiresAt
// are invisible to reads and eligible for removal by the sweep worker.
type Story struct {
	ID        int64        `db:"id" json:"id"`
	UserID    int64        `db:"user_id" json:"user_id"`
	StoryURL  string       `db:"story_url" json:"story_url"`
	ExpiresAt time.Time    `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// StoryThumbnail is the lightweight story shape for profile responses.
type StoryThumbnail struct {
	ID       int64  `db:"id" json:"id"`
	StoryURL string `db:"story_url" json:"image"`
}

// StoryListResponse is the response for GET /stories.
type StoryListResponse struct {
	Stories []Story `json:"users_stories"`
}

// Story errors
var (
	ErrStoryNotFound = errors.New("story not found")
)
