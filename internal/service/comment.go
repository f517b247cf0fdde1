package service

import (
	"context"
	"fmt"
	"log"

	"instashare/internal/model"
	"instashare/internal/queue"
	"instashare/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create adds a comment to a post.
func (s *CommentService) Create(ctx context.Context, postID, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if len(req.Comment) == 0 {
		return nil, model.ErrCommentRequired
	}
	if len(req.Comment) > model.MaxCommentLength {
		return nil, model.ErrCommentTooLong
	}

	// Verify post exists
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comment, err := s.commentRepo.Create(ctx, postID, userID, req.Comment)
	if err != nil {
		return nil, err
	}

	// Attach author info for the response
	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		comment.Author = &model.UserSummary{
			ID:         author.ID,
			Username:   author.Username,
			ProfilePic: author.ProfilePic,
		}
	}

	log.Printf("[CommentService] User %d commented on post %d", userID, postID)

	// Publish event (after insert, best-effort)
	if s.publisher != nil {
		event := queue.NewPostCommentedEvent(postID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[CommentService] Failed to publish PostCommented event: %v", err)
		}
	}

	return comment, nil
}

// GetByPostID returns all comments for a post, newest first.
func (s *CommentService) GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	return comments, nil
}
