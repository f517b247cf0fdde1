package service

import (
	"context"
	"errors"
	"testing"

	"instashare/internal/model"
	"instashare/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on repository INTERFACES, so tests swap in mocks with
// controlled behavior instead of hitting a real database.

type mockPostRepository struct {
	createFn            func(ctx context.Context, userID int64, imageURL, caption string) (*model.Post, error)
	getByIDFn           func(ctx context.Context, postID int64) (*model.Post, error)
	getAllFn            func(ctx context.Context) ([]model.Post, error)
	getUserThumbnailsFn func(ctx context.Context, userID int64) ([]model.PostThumbnail, error)
	existsFn            func(ctx context.Context, postID int64) (bool, error)
	isLikedFn           func(ctx context.Context, postID, userID int64) (bool, error)
	likeFn              func(ctx context.Context, postID, userID int64) (int, error)
	unlikeFn            func(ctx context.Context, postID, userID int64) (int, error)
	checkLikesFn        func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	countLikesFn        func(ctx context.Context, postID int64) (int, error)
	setLikesCountFn     func(ctx context.Context, postID int64, count int) error

	likeCalls   int
	unlikeCalls int
}

func (m *mockPostRepository) Create(ctx context.Context, userID int64, imageURL, caption string) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, imageURL, caption)
	}
	return &model.Post{ID: 1, UserID: userID, ImageURL: imageURL, Caption: caption}, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetAll(ctx context.Context) ([]model.Post, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockPostRepository) GetUserThumbnails(ctx context.Context, userID int64) ([]model.PostThumbnail, error) {
	if m.getUserThumbnailsFn != nil {
		return m.getUserThumbnailsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) IsLiked(ctx context.Context, postID, userID int64) (bool, error) {
	if m.isLikedFn != nil {
		return m.isLikedFn(ctx, postID, userID)
	}
	return false, nil
}

func (m *mockPostRepository) Like(ctx context.Context, postID, userID int64) (int, error) {
	m.likeCalls++
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, userID)
	}
	return 1, nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, postID, userID int64) (int, error) {
	m.unlikeCalls++
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, userID)
	}
	return 0, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockPostRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	if m.countLikesFn != nil {
		return m.countLikesFn(ctx, postID)
	}
	return 0, nil
}

func (m *mockPostRepository) SetLikesCount(ctx context.Context, postID int64, count int) error {
	if m.setLikesCountFn != nil {
		return m.setLikesCountFn(ctx, postID, count)
	}
	return nil
}

type mockCommentRepository struct {
	createFn       func(ctx context.Context, postID, userID int64, text string) (*model.Comment, error)
	getByPostIDFn  func(ctx context.Context, postID int64) ([]model.Comment, error)
	getByPostIDsFn func(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, postID, userID int64, text string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, postID, userID, text)
	}
	return &model.Comment{ID: 1, PostID: postID, UserID: userID, Comment: text}, nil
}

func (m *mockCommentRepository) GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error) {
	if m.getByPostIDFn != nil {
		return m.getByPostIDFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepository) GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	if m.getByPostIDsFn != nil {
		return m.getByPostIDsFn(ctx, postIDs)
	}
	return map[int64][]model.Comment{}, nil
}

// mockPublisher records published events without touching Redis.
type mockPublisher struct {
	events []queue.Event
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.Event) (string, error) {
	m.events = append(m.events, event)
	return "1-0", nil
}

// =============================================================================
// TOGGLE LIKE TESTS
// =============================================================================

func TestPostService_ToggleLike_Like(t *testing.T) {
	mockRepo := &mockPostRepository{
		isLikedFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			return false, nil
		},
		likeFn: func(ctx context.Context, postID, userID int64) (int, error) {
			return 5, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewPostService(mockRepo, &mockCommentRepository{}, pub)

	result, err := svc.ToggleLike(context.Background(), 10, 42)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !result.Liked {
		t.Error("expected Liked to be true")
	}
	if result.LikesCount != 5 {
		t.Errorf("likes_count = %d, want 5", result.LikesCount)
	}
	if mockRepo.likeCalls != 1 {
		t.Errorf("Like called %d times, want 1", mockRepo.likeCalls)
	}
	if mockRepo.unlikeCalls != 0 {
		t.Errorf("Unlike called %d times, want 0", mockRepo.unlikeCalls)
	}

	if len(pub.events) != 1 || pub.events[0].Type != queue.EventPostLiked {
		t.Errorf("expected one %s event, got %v", queue.EventPostLiked, pub.events)
	}
}

func TestPostService_ToggleLike_Unlike(t *testing.T) {
	mockRepo := &mockPostRepository{
		isLikedFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			return true, nil
		},
		unlikeFn: func(ctx context.Context, postID, userID int64) (int, error) {
			return 4, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewPostService(mockRepo, &mockCommentRepository{}, pub)

	result, err := svc.ToggleLike(context.Background(), 10, 42)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Liked {
		t.Error("expected Liked to be false")
	}
	if result.LikesCount != 4 {
		t.Errorf("likes_count = %d, want 4", result.LikesCount)
	}
	if mockRepo.unlikeCalls != 1 {
		t.Errorf("Unlike called %d times, want 1", mockRepo.unlikeCalls)
	}

	if len(pub.events) != 1 || pub.events[0].Type != queue.EventPostUnliked {
		t.Errorf("expected one %s event, got %v", queue.EventPostUnliked, pub.events)
	}
}

func TestPostService_ToggleLike_PostNotFound(t *testing.T) {
	mockRepo := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) {
			return false, nil
		},
	}
	svc := NewPostService(mockRepo, &mockCommentRepository{}, &mockPublisher{})

	_, err := svc.ToggleLike(context.Background(), 999, 42)
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got: %v", err)
	}
	if mockRepo.likeCalls != 0 || mockRepo.unlikeCalls != 0 {
		t.Error("no ledger mutation should happen for a missing post")
	}
}

// A concurrent duplicate like loses the insert race inside the repository.
// The toggle must treat that as already-done, not as a failure, so the
// caller's contribution to the counter stays exactly one.
func TestPostService_ToggleLike_LikeRaceIsNoOp(t *testing.T) {
	mockRepo := &mockPostRepository{
		isLikedFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			return false, nil // stale read: the other request's like lands after this
		},
		likeFn: func(ctx context.Context, postID, userID int64) (int, error) {
			return 0, model.ErrAlreadyLiked
		},
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, LikesCount: 7}, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewPostService(mockRepo, &mockCommentRepository{}, pub)

	result, err := svc.ToggleLike(context.Background(), 10, 42)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !result.Liked {
		t.Error("expected Liked to be true after resolved like race")
	}
	if result.LikesCount != 7 {
		t.Errorf("likes_count = %d, want 7", result.LikesCount)
	}
	if len(pub.events) != 0 {
		t.Errorf("no event should be published for a no-op toggle, got %v", pub.events)
	}
}

func TestPostService_ToggleLike_UnlikeRaceIsNoOp(t *testing.T) {
	mockRepo := &mockPostRepository{
		isLikedFn: func(ctx context.Context, postID, userID int64) (bool, error) {
			return true, nil
		},
		unlikeFn: func(ctx context.Context, postID, userID int64) (int, error) {
			return 0, model.ErrNotLiked
		},
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, LikesCount: 3}, nil
		},
	}
	svc := NewPostService(mockRepo, &mockCommentRepository{}, &mockPublisher{})

	result, err := svc.ToggleLike(context.Background(), 10, 42)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Liked {
		t.Error("expected Liked to be false after resolved unlike race")
	}
	if result.LikesCount != 3 {
		t.Errorf("likes_count = %d, want 3", result.LikesCount)
	}
}

// =============================================================================
// CREATE / LIST TESTS
// =============================================================================

func TestPostService_Create_CaptionTooLong(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, &mockPublisher{})

	longCaption := make([]byte, model.MaxPostCaptionLength+1)
	for i := range longCaption {
		longCaption[i] = 'a'
	}

	_, err := svc.Create(context.Background(), 1, model.CreatePostRequest{
		ImageURL: "https://cdn.example.com/posts/a.jpg",
		Caption:  string(longCaption),
	})
	if !errors.Is(err, model.ErrCaptionTooLong) {
		t.Errorf("expected ErrCaptionTooLong, got: %v", err)
	}
}

func TestPostService_Create_ImageRequired(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockCommentRepository{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), 1, model.CreatePostRequest{Caption: "no image"})
	if !errors.Is(err, model.ErrImageRequired) {
		t.Errorf("expected ErrImageRequired, got: %v", err)
	}
}

func TestPostService_List_EmbedsCommentsAndLikeState(t *testing.T) {
	mockRepo := &mockPostRepository{
		getAllFn: func(ctx context.Context) ([]model.Post, error) {
			return []model.Post{
				{ID: 2, LikesCount: 1},
				{ID: 1, LikesCount: 0},
			}, nil
		},
		checkLikesFn: func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{2: true}, nil
		},
	}
	mockComments := &mockCommentRepository{
		getByPostIDsFn: func(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
			return map[int64][]model.Comment{
				2: {{ID: 5, PostID: 2, Comment: "nice"}},
			}, nil
		},
	}
	svc := NewPostService(mockRepo, mockComments, &mockPublisher{})

	viewerID := int64(42)
	posts, err := svc.List(context.Background(), &viewerID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}

	if !posts[0].IsLiked {
		t.Error("post 2 should be marked as liked by the viewer")
	}
	if posts[1].IsLiked {
		t.Error("post 1 should not be marked as liked")
	}

	if len(posts[0].Comments) != 1 || posts[0].Comments[0].Comment != "nice" {
		t.Errorf("post 2 comments = %v, want the embedded comment", posts[0].Comments)
	}
	if posts[1].Comments == nil {
		t.Error("posts without comments should carry an empty slice, not nil")
	}
}

func TestPostService_List_AnonymousViewerHasNoLikeState(t *testing.T) {
	checkLikesCalled := false
	mockRepo := &mockPostRepository{
		getAllFn: func(ctx context.Context) ([]model.Post, error) {
			return []model.Post{{ID: 1}}, nil
		},
		checkLikesFn: func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
			checkLikesCalled = true
			return nil, nil
		},
	}
	svc := NewPostService(mockRepo, &mockCommentRepository{}, &mockPublisher{})

	posts, err := svc.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if checkLikesCalled {
		t.Error("CheckLikes should not run for anonymous viewers")
	}
	if posts[0].IsLiked {
		t.Error("anonymous viewers never see is_liked=true")
	}
}
