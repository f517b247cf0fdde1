package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventPostLiked     = "post_liked"
	EventPostUnliked   = "post_unliked"
	EventPostCommented = "post_commented"
	EventStoryCreated  = "story_created"
)

// Stream names
const (
	StreamActivity = "stream:activity"
)

// Consumer group name for background workers
const (
	ConsumerGroupActivity = "activity_workers"
)

// Event represents a domain event published to the activity stream.
// All events share this structure; unused fields stay zero.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Like/comment events
	PostID  int64 `json:"post_id,omitempty"`
	ActorID int64 `json:"actor_id,omitempty"`

	// Story events
	StoryID   int64 `json:"story_id,omitempty"`
	ExpiresAt int64 `json:"expires_at,omitempty"` // Unix timestamp
}

// NewPostLikedEvent is published after a successful like toggle-on.
// The worker re-counts the ledger and repairs likes_count on divergence.
func NewPostLikedEvent(postID, actorID int64) Event {
	return Event{
		Type:      EventPostLiked,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		ActorID:   actorID,
	}
}

// NewPostUnlikedEvent is published after a successful like toggle-off.
func NewPostUnlikedEvent(postID, actorID int64) Event {
	return Event{
		Type:      EventPostUnliked,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		ActorID:   actorID,
	}
}

// NewPostCommentedEvent is published after a comment is created.
func NewPostCommentedEvent(postID, actorID int64) Event {
	return Event{
		Type:      EventPostCommented,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		ActorID:   actorID,
	}
}

// NewStoryCreatedEvent is published after a story is created.
// The worker indexes the story in the active-story cache.
func NewStoryCreatedEvent(storyID, actorID int64, expiresAt time.Time) Event {
	return Event{
		Type:      EventStoryCreated,
		Timestamp: time.Now().Unix(),
		StoryID:   storyID,
		ActorID:   actorID,
		ExpiresAt: expiresAt.Unix(),
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e Event) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEvent parses an Event from Redis stream message values.
func ParseEvent(values map[string]interface{}) (Event, error) {
	data, ok := values["data"].(string)
	if !ok {
		return Event{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
