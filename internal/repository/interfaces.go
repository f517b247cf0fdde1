package repository

import (
	"context"

	"instashare/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, userID int64, bio, profilePic *string) (*model.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, userID int64, imageURL, caption string) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// GetAll returns every post with its author summary, newest first.
	GetAll(ctx context.Context) ([]model.Post, error)
	GetUserThumbnails(ctx context.Context, userID int64) ([]model.PostThumbnail, error)
	// Exists checks if a post exists
	Exists(ctx context.Context, postID int64) (bool, error)

	// Like ledger operations. Like and Unlike each run the ledger mutation
	// and the counter update in a single transaction and return the post's
	// likes_count after the change. Like returns ErrAlreadyLiked when the
	// (post, user) row already exists; Unlike returns ErrNotLiked when it
	// doesn't.
	IsLiked(ctx context.Context, postID, userID int64) (bool, error)
	Like(ctx context.Context, postID, userID int64) (likesCount int, err error)
	Unlike(ctx context.Context, postID, userID int64) (likesCount int, err error)
	// CheckLikes checks which of the given posts the user has liked
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)

	// Counter audit: CountLikes reads the ledger truth, SetLikesCount
	// repairs the denormalized value.
	CountLikes(ctx context.Context, postID int64) (int, error)
	SetLikesCount(ctx context.Context, postID int64, count int) error
}

type CommentRepository interface {
	Create(ctx context.Context, postID, userID int64, text string) (*model.Comment, error)
	GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error)
	// GetByPostIDs batch-loads comments for embedding into the post list.
	GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error)
}

type StoryRepository interface {
	Create(ctx context.Context, story *model.Story) error
	// GetActive returns unexpired stories with author summaries, newest first.
	GetActive(ctx context.Context) ([]model.Story, error)
	// GetByIDs hydrates unexpired stories for the given IDs, newest first.
	// IDs whose rows are gone or expired are silently absent from the result.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Story, error)
	GetUserThumbnails(ctx context.Context, userID int64) ([]model.StoryThumbnail, error)
	// DeleteExpired removes rows past their expiry. Returns rows removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
