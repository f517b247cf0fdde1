package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"instashare/internal/model"
	"instashare/internal/queue"
	"instashare/internal/repository"
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	publisher   queue.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	publisher queue.Publisher,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		publisher:   publisher,
	}
}

// Create creates a new post. The image has already been uploaded to object
// storage by the handler; req.ImageURL is the resulting public URL.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	if req.ImageURL == "" {
		return nil, model.ErrImageRequired
	}
	if len(req.Caption) > model.MaxPostCaptionLength {
		return nil, model.ErrCaptionTooLong
	}

	post, err := s.postRepo.Create(ctx, userID, req.ImageURL, req.Caption)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Comments = []model.Comment{}

	return post, nil
}

// List returns all posts, newest first, with authors, embedded comments and
// - for an authenticated viewer - their like state on each post.
func (s *PostService) List(ctx context.Context, viewerID *int64) ([]model.Post, error) {
	posts, err := s.postRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	postIDs := make([]int64, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}

	commentMap, err := s.commentRepo.GetByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	var likeMap map[int64]bool
	if viewerID != nil {
		likeMap, err = s.postRepo.CheckLikes(ctx, *viewerID, postIDs)
		if err != nil {
			// Like status is decoration on the list; don't fail the read
			log.Printf("[PostService] Failed to check like status: %v", err)
			likeMap = nil
		}
	}

	for i := range posts {
		comments := commentMap[posts[i].ID]
		if comments == nil {
			comments = []model.Comment{}
		}
		posts[i].Comments = comments
		if likeMap != nil {
			posts[i].IsLiked = likeMap[posts[i].ID]
		}
	}

	return posts, nil
}

// ToggleLike flips the (post, user) like relationship and keeps the
// denormalized counter consistent. Each direction runs ledger mutation and
// counter update in one transaction inside the repository.
//
// Concurrent duplicate toggles resolve via the ledger's uniqueness
// constraint: the loser of a like race gets ErrAlreadyLiked and the loser
// of an unlike race gets ErrNotLiked; both are treated as no-ops so the
// user's counter contribution stays 0 or 1, never more.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID int64) (*model.ToggleLikeResponse, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	liked, err := s.postRepo.IsLiked(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("check like state: %w", err)
	}

	if liked {
		likesCount, err := s.postRepo.Unlike(ctx, postID, userID)
		if errors.Is(err, model.ErrNotLiked) {
			// Lost an unlike race; the relationship is already gone
			return s.toggleResult(ctx, postID, false)
		}
		if err != nil {
			return nil, err
		}
		log.Printf("[PostService] User %d unliked post %d", userID, postID)
		s.publishToggle(ctx, queue.NewPostUnlikedEvent(postID, userID))
		return &model.ToggleLikeResponse{Liked: false, LikesCount: likesCount}, nil
	}

	likesCount, err := s.postRepo.Like(ctx, postID, userID)
	if errors.Is(err, model.ErrAlreadyLiked) {
		// Lost a like race; the relationship already exists
		return s.toggleResult(ctx, postID, true)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[PostService] User %d liked post %d", userID, postID)
	s.publishToggle(ctx, queue.NewPostLikedEvent(postID, userID))
	return &model.ToggleLikeResponse{Liked: true, LikesCount: likesCount}, nil
}

// toggleResult builds the response for a toggle that resolved as a no-op,
// reading the current counter from the post record.
func (s *PostService) toggleResult(ctx context.Context, postID int64, liked bool) (*model.ToggleLikeResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &model.ToggleLikeResponse{Liked: liked, LikesCount: post.LikesCount}, nil
}

// publishToggle emits a toggle event for the counter audit worker.
// Best-effort: the toggle itself already committed.
func (s *PostService) publishToggle(ctx context.Context, event queue.Event) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
		log.Printf("[PostService] Failed to publish %s event: post=%d err=%v", event.Type, event.PostID, err)
	}
}
