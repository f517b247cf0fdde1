package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"instashare/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

type commentWithAuthor struct {
	model.Comment
	AuthorID         int64  `db:"author_id"`
	AuthorUsername   string `db:"author_username"`
	AuthorProfilePic string `db:"author_profile_pic"`
}

func (c *commentWithAuthor) toComment() model.Comment {
	comment := c.Comment
	comment.Author = &model.UserSummary{
		ID:         c.AuthorID,
		Username:   c.AuthorUsername,
		ProfilePic: c.AuthorProfilePic,
	}
	return comment
}

// Create inserts a comment. Comments are append-only.
func (r *commentRepository) Create(ctx context.Context, postID, userID int64, text string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (post_id, user_id, comment)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, comment, created_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, postID, userID, text)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// GetByPostID returns all comments for a post with author summaries, newest first.
func (r *commentRepository) GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.comment, c.created_at,
		       u.id AS author_id, u.username AS author_username, u.profile_pic AS author_profile_pic
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`
	var rows []commentWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, postID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i := range rows {
		comments[i] = rows[i].toComment()
	}
	return comments, nil
}

// GetByPostIDs batch-loads comments for multiple posts in one query to
// avoid N+1 reads when building the post list.
func (r *commentRepository) GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	if len(postIDs) == 0 {
		return map[int64][]model.Comment{}, nil
	}

	query := `
		SELECT c.id, c.post_id, c.user_id, c.comment, c.created_at,
		       u.id AS author_id, u.username AS author_username, u.profile_pic AS author_profile_pic
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.post_id, c.created_at DESC, c.id DESC
	`
	var rows []commentWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get comments by post ids: %w", err)
	}

	result := make(map[int64][]model.Comment)
	for i := range rows {
		comment := rows[i].toComment()
		result[comment.PostID] = append(result[comment.PostID], comment)
	}
	return result, nil
}
