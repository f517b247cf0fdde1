package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"instashare/internal/model"
)

type storyRepository struct {
	db *sqlx.DB
}

func NewStoryRepository(db *sqlx.DB) StoryRepository {
	return &storyRepository{db: db}
}

type storyWithAuthor struct {
	model.Story
	AuthorID         int64  `db:"author_id"`
	AuthorUsername   string `db:"author_username"`
	AuthorProfilePic string `db:"author_profile_pic"`
}

// Create inserts a story with its pre-computed expiry.
func (r *storyRepository) Create(ctx context.Context, story *model.Story) error {
	query := `
		INSERT INTO stories (user_id, story_url, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, story.UserID, story.StoryURL, story.ExpiresAt).
		Scan(&story.ID, &story.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert story: %w", err)
	}
	return nil
}

// GetActive returns unexpired stories with author summaries, newest first.
// The expires_at filter keeps expired stories invisible even before the
// sweep worker removes their rows.
func (r *storyRepository) GetActive(ctx context.Context) ([]model.Story, error) {
	query := `
		SELECT s.id, s.user_id, s.story_url, s.expires_at, s.created_at,
		       u.id AS author_id, u.username AS author_username, u.profile_pic AS author_profile_pic
		FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE s.expires_at > NOW()
		ORDER BY s.created_at DESC, s.id DESC
	`
	var rows []storyWithAuthor
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("get active stories: %w", err)
	}

	stories := make([]model.Story, len(rows))
	for i := range rows {
		story := rows[i].Story
		story.Author = &model.UserSummary{
			ID:         rows[i].AuthorID,
			Username:   rows[i].AuthorUsername,
			ProfilePic: rows[i].AuthorProfilePic,
		}
		stories[i] = story
	}
	return stories, nil
}

// GetByIDs hydrates unexpired stories for the given IDs, newest first.
// Used to serve listings from the active-story index.
func (r *storyRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Story, error) {
	if len(ids) == 0 {
		return []model.Story{}, nil
	}

	query := `
		SELECT s.id, s.user_id, s.story_url, s.expires_at, s.created_at,
		       u.id AS author_id, u.username AS author_username, u.profile_pic AS author_profile_pic
		FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ANY($1) AND s.expires_at > NOW()
		ORDER BY s.created_at DESC, s.id DESC
	`
	var rows []storyWithAuthor
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get stories by ids: %w", err)
	}

	stories := make([]model.Story, len(rows))
	for i := range rows {
		story := rows[i].Story
		story.Author = &model.UserSummary{
			ID:         rows[i].AuthorID,
			Username:   rows[i].AuthorUsername,
			ProfilePic: rows[i].AuthorProfilePic,
		}
		stories[i] = story
	}
	return stories, nil
}

// GetUserThumbnails returns a user's unexpired story thumbnails.
func (r *storyRepository) GetUserThumbnails(ctx context.Context, userID int64) ([]model.StoryThumbnail, error) {
	query := `
		SELECT id, story_url
		FROM stories
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC, id DESC
	`
	var thumbnails []model.StoryThumbnail
	err := r.db.SelectContext(ctx, &thumbnails, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get story thumbnails: %w", err)
	}
	return thumbnails, nil
}

// DeleteExpired removes rows past their expiry.
func (r *storyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired stories: %w", err)
	}
	return result.RowsAffected()
}
