package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ActiveStoriesKey is the sorted set of currently active story IDs,
	// scored by expiry time (unix seconds).
	ActiveStoriesKey = "stories:active"
)

// StoryCache indexes active stories so the sweep and reads can reason about
// expiry without scanning the table. Interface enables testing with mocks.
type StoryCache interface {
	// Add indexes a story under its expiry time.
	Add(ctx context.Context, storyID int64, expiresAt time.Time) error

	// ActiveIDs returns the IDs of stories that have not yet expired,
	// soonest-to-expire first.
	ActiveIDs(ctx context.Context) ([]int64, error)

	// Sweep drops entries whose expiry has passed and returns how many
	// were removed.
	Sweep(ctx context.Context) (int64, error)

	// Remove drops a single story from the index.
	Remove(ctx context.Context, storyID int64) error
}

// RedisStoryCache implements StoryCache using a Redis Sorted Set.
type RedisStoryCache struct {
	client *redis.Client
}

// NewStoryCache creates a new StoryCache backed by Redis.
func NewStoryCache(client *redis.Client) StoryCache {
	return &RedisStoryCache{client: client}
}

// Add indexes a story with its expiry timestamp as score.
func (c *RedisStoryCache) Add(ctx context.Context, storyID int64, expiresAt time.Time) error {
	err := c.client.ZAdd(ctx, ActiveStoriesKey, redis.Z{
		Score:  float64(expiresAt.Unix()),
		Member: strconv.FormatInt(storyID, 10),
	}).Err()
	if err != nil {
		log.Printf("[StoryCache] Add FAILED: story=%d err=%v", storyID, err)
		return fmt.Errorf("add story to index: %w", err)
	}

	log.Printf("[StoryCache] Add OK: story=%d expiresAt=%d", storyID, expiresAt.Unix())
	return nil
}

// ActiveIDs returns stories whose expiry score is still in the future.
func (c *RedisStoryCache) ActiveIDs(ctx context.Context) ([]int64, error) {
	now := time.Now().Unix()

	members, err := c.client.ZRangeByScore(ctx, ActiveStoriesKey, &redis.ZRangeBy{
		Min: fmt.Sprintf("(%d", now), // exclusive: strictly unexpired
		Max: "+inf",
	}).Result()
	if err != nil {
		log.Printf("[StoryCache] ActiveIDs FAILED: err=%v", err)
		return nil, fmt.Errorf("get active stories: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			log.Printf("[StoryCache] ActiveIDs parse error: member=%q err=%v", m, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Sweep removes entries whose expiry is at or before now.
func (c *RedisStoryCache) Sweep(ctx context.Context) (int64, error) {
	now := time.Now().Unix()

	removed, err := c.client.ZRemRangeByScore(ctx, ActiveStoriesKey, "-inf", strconv.FormatInt(now, 10)).Result()
	if err != nil {
		log.Printf("[StoryCache] Sweep FAILED: err=%v", err)
		return 0, fmt.Errorf("sweep expired stories: %w", err)
	}

	if removed > 0 {
		log.Printf("[StoryCache] Sweep OK: removed=%d", removed)
	}
	return removed, nil
}

// Remove drops a single story from the index.
func (c *RedisStoryCache) Remove(ctx context.Context, storyID int64) error {
	if err := c.client.ZRem(ctx, ActiveStoriesKey, strconv.FormatInt(storyID, 10)).Err(); err != nil {
		log.Printf("[StoryCache] Remove FAILED: story=%d err=%v", storyID, err)
		return fmt.Errorf("remove story from index: %w", err)
	}
	return nil
}
