package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"instashare/internal/cache"
	"instashare/internal/model"
	"instashare/internal/queue"
)

// LikeCountStore abstracts the pieces of the post store the audit needs:
// the stored counter, the ledger truth, and the repair write.
type LikeCountStore interface {
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	CountLikes(ctx context.Context, postID int64) (int, error)
	SetLikesCount(ctx context.Context, postID int64, count int) error
}

// StorySweeper removes expired story rows from the database.
type StorySweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Handler processes activity events from the queue.
type Handler struct {
	likeStore  LikeCountStore
	storyCache cache.StoryCache
	sweeper    StorySweeper
}

// NewHandler creates a new event handler.
func NewHandler(likeStore LikeCountStore, storyCache cache.StoryCache, sweeper StorySweeper) *Handler {
	return &Handler{
		likeStore:  likeStore,
		storyCache: storyCache,
		sweeper:    sweeper,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.Event) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostLiked, queue.EventPostUnliked:
		err = h.auditLikesCount(ctx, event)
	case queue.EventPostCommented:
		// Comments need no follow-up work yet; the insert is the whole story
		err = nil
	case queue.EventStoryCreated:
		err = h.handleStoryCreated(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// auditLikesCount re-counts the like ledger for a post and repairs the
// denormalized counter if it drifted. The toggle path updates both in one
// transaction, so a repair firing means something external touched the rows.
func (h *Handler) auditLikesCount(ctx context.Context, event queue.Event) error {
	post, err := h.likeStore.GetByID(ctx, event.PostID)
	if errors.Is(err, model.ErrPostNotFound) {
		// Post deleted between toggle and audit; nothing to repair
		log.Printf("[Worker] LikeAudit: post=%d no longer exists", event.PostID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}

	actual, err := h.likeStore.CountLikes(ctx, event.PostID)
	if err != nil {
		return fmt.Errorf("count likes: %w", err)
	}

	if post.LikesCount == actual {
		return nil
	}

	log.Printf("[Worker] LikeAudit: post=%d stored=%d actual=%d, repairing",
		event.PostID, post.LikesCount, actual)

	if err := h.likeStore.SetLikesCount(ctx, event.PostID, actual); err != nil {
		return fmt.Errorf("repair likes count: %w", err)
	}

	log.Printf("[Worker] LikeAudit DONE: post=%d count=%d", event.PostID, actual)
	return nil
}

// handleStoryCreated indexes the story in the active-story cache.
func (h *Handler) handleStoryCreated(ctx context.Context, event queue.Event) error {
	log.Printf("[Worker] StoryCreated: story=%d actor=%d", event.StoryID, event.ActorID)

	expiresAt := time.Unix(event.ExpiresAt, 0)
	if err := h.storyCache.Add(ctx, event.StoryID, expiresAt); err != nil {
		return fmt.Errorf("index story: %w", err)
	}
	return nil
}

// SweepExpiredStories removes expired story rows and their cache entries.
// Called periodically by the manager's sweep ticker.
func (h *Handler) SweepExpiredStories(ctx context.Context) error {
	deleted, err := h.sweeper.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("delete expired stories: %w", err)
	}

	removed, err := h.storyCache.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep story cache: %w", err)
	}

	if deleted > 0 || removed > 0 {
		log.Printf("[Worker] StorySweep: deleted=%d rows, removed=%d index entries", deleted, removed)
	}
	return nil
}
