package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"instashare/internal/cache"
	"instashare/internal/model"
	"instashare/internal/queue"
	"instashare/internal/repository"
)

type StoryService struct {
	storyRepo  repository.StoryRepository
	storyCache cache.StoryCache
	publisher  queue.Publisher
}

func NewStoryService(storyRepo repository.StoryRepository, storyCache cache.StoryCache, publisher queue.Publisher) *StoryService {
	return &StoryService{
		storyRepo:  storyRepo,
		storyCache: storyCache,
		publisher:  publisher,
	}
}

// Create stamps the expiry at creation time and persists the story.
// The lifetime is fixed; nothing later extends it.
func (s *StoryService) Create(ctx context.Context, userID int64, storyURL string) (*model.Story, error) {
	if storyURL == "" {
		return nil, model.ErrImageRequired
	}

	story := &model.Story{
		UserID:    userID,
		StoryURL:  storyURL,
		ExpiresAt: time.Now().Add(model.StoryTTL),
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}

	log.Printf("[StoryService] User %d created story %d (expires %s)",
		userID, story.ID, story.ExpiresAt.Format(time.RFC3339))

	// Publish event so the worker can index the story (best-effort)
	if s.publisher != nil {
		event := queue.NewStoryCreatedEvent(story.ID, userID, story.ExpiresAt)
		if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
			log.Printf("[StoryService] Failed to publish StoryCreated event: %v", err)
		}
	}

	return story, nil
}

// ListActive returns all unexpired stories, newest first. The listing is
// served from the active-story index when it is warm; a cold or unavailable
// index falls back to the table scan. Expiry is enforced at read time either
// way so a story never outlives its window even between sweeps.
func (s *StoryService) ListActive(ctx context.Context) ([]model.Story, error) {
	if stories, ok := s.listFromIndex(ctx); ok {
		return stories, nil
	}

	stories, err := s.storyRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active stories: %w", err)
	}
	if stories == nil {
		stories = []model.Story{}
	}
	return stories, nil
}

// listFromIndex hydrates the listing from the indexed story IDs. Returns
// ok=false when the index is cold or unreachable; an empty index is treated
// as cold because it is indistinguishable from one that was never warmed.
func (s *StoryService) listFromIndex(ctx context.Context) ([]model.Story, bool) {
	if s.storyCache == nil {
		return nil, false
	}

	ids, err := s.storyCache.ActiveIDs(ctx)
	if err != nil {
		log.Printf("[StoryService] Story index unavailable, falling back to table scan: %v", err)
		return nil, false
	}
	if len(ids) == 0 {
		return nil, false
	}

	stories, err := s.storyRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("[StoryService] Failed to hydrate indexed stories: %v", err)
		return nil, false
	}

	if len(stories) < len(ids) {
		s.dropStaleEntries(ctx, ids, stories)
	}
	return stories, true
}

// dropStaleEntries removes indexed IDs whose rows are gone or already
// expired, so the index converges on the table between sweeps.
func (s *StoryService) dropStaleEntries(ctx context.Context, ids []int64, stories []model.Story) {
	seen := make(map[int64]struct{}, len(stories))
	for i := range stories {
		seen[stories[i].ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := s.storyCache.Remove(ctx, id); err != nil {
			log.Printf("[StoryService] Failed to drop stale index entry %d: %v", id, err)
		}
	}
}
