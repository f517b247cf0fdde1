package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"instashare/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postWithAuthor is the row shape for post queries joined with users.
type postWithAuthor struct {
	model.Post
	AuthorID         int64  `db:"author_id"`
	AuthorUsername   string `db:"author_username"`
	AuthorProfilePic string `db:"author_profile_pic"`
}

func (p *postWithAuthor) toPost() model.Post {
	post := p.Post
	post.Author = &model.UserSummary{
		ID:         p.AuthorID,
		Username:   p.AuthorUsername,
		ProfilePic: p.AuthorProfilePic,
	}
	return post
}

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, userID int64, imageURL, caption string) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, image_url, caption)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, image_url, caption, likes_count, created_at, updated_at
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, userID, imageURL, caption)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &post, nil
}

// GetByID retrieves a single post with its author.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.image_url, p.caption, p.likes_count, p.created_at, p.updated_at,
		       u.id AS author_id, u.username AS author_username, u.profile_pic AS author_profile_pic
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	var row postWithAuthor
	err := r.db.GetContext(ctx, &row, query, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	post := row.toPost()
	return &post, nil
}

// GetAll returns every post with its author summary, newest first.
func (r *postRepository) GetAll(ctx context.Context) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.image_url, p.caption, p.likes_count, p.created_at, p.updated_at,
		       u.id AS author_id, u.username AS author_username, u.profile_pic AS author_profile_pic
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC
	`
	var rows []postWithAuthor
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i := range rows {
		posts[i] = rows[i].toPost()
	}
	return posts, nil
}

// GetUserThumbnails retrieves post thumbnails for a user's profile grid.
func (r *postRepository) GetUserThumbnails(ctx context.Context, userID int64) ([]model.PostThumbnail, error) {
	query := `
		SELECT id, image_url
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	var thumbnails []model.PostThumbnail
	err := r.db.SelectContext(ctx, &thumbnails, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get thumbnails: %w", err)
	}
	return thumbnails, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// IsLiked reports whether a (post, user) ledger row exists.
func (r *postRepository) IsLiked(ctx context.Context, postID, userID int64) (bool, error) {
	var liked bool
	err := r.db.GetContext(ctx, &liked,
		`SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("check like exists: %w", err)
	}
	return liked, nil
}

// Like inserts a ledger row and increments likes_count in one transaction.
// The UNIQUE (post_id, user_id) constraint makes a concurrent duplicate
// like lose the race with a 23505 instead of double-incrementing.
func (r *postRepository) Like(ctx context.Context, postID, userID int64) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, model.ErrAlreadyLiked
		}
		return 0, fmt.Errorf("insert like: %w", err)
	}

	likesCount, err := r.bumpLikesCount(ctx, tx, postID, 1)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return likesCount, nil
}

// Unlike deletes the ledger row and decrements likes_count in one
// transaction. Returns ErrNotLiked when there was no row to delete.
func (r *postRepository) Unlike(ctx context.Context, postID, userID int64) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return 0, model.ErrNotLiked
	}

	likesCount, err := r.bumpLikesCount(ctx, tx, postID, -1)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return likesCount, nil
}

// bumpLikesCount atomically adjusts the denormalized counter and returns
// the new value.
func (r *postRepository) bumpLikesCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	var likesCount int
	err := tx.GetContext(ctx, &likesCount,
		`UPDATE posts SET likes_count = likes_count + $1, updated_at = NOW() WHERE id = $2 RETURNING likes_count`,
		delta, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update likes count: %w", err)
	}
	return likesCount, nil
}

// CheckLikes checks which posts the user has liked.
// Returns a map of post_id -> liked (true/false).
func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}

// CountLikes counts the ledger rows for a post. The ledger, not the
// denormalized counter, is the source of truth.
func (r *postRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// SetLikesCount overwrites the denormalized counter. Used by the audit
// worker to repair divergence.
func (r *postRepository) SetLikesCount(ctx context.Context, postID int64, count int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET likes_count = $1, updated_at = NOW() WHERE id = $2`, count, postID)
	if err != nil {
		return fmt.Errorf("set likes count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}
