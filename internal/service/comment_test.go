package service

import (
	"context"
	"errors"
	"testing"

	"instashare/internal/model"
	"instashare/internal/queue"
)

func TestCommentService_Create_Success(t *testing.T) {
	mockUsers := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice", ProfilePic: "pic.jpg"}, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewCommentService(&mockCommentRepository{}, &mockPostRepository{}, mockUsers, pub)

	comment, err := svc.Create(context.Background(), 10, 42, model.CreateCommentRequest{Comment: "great shot"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if comment.Comment != "great shot" {
		t.Errorf("comment = %q, want %q", comment.Comment, "great shot")
	}
	if comment.Author == nil || comment.Author.Username != "alice" {
		t.Errorf("author = %v, want alice", comment.Author)
	}

	if len(pub.events) != 1 || pub.events[0].Type != queue.EventPostCommented {
		t.Errorf("expected one %s event, got %v", queue.EventPostCommented, pub.events)
	}
}

func TestCommentService_Create_Validation(t *testing.T) {
	longComment := make([]byte, model.MaxCommentLength+1)
	for i := range longComment {
		longComment[i] = 'x'
	}

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty comment", "", model.ErrCommentRequired},
		{"too long", string(longComment), model.ErrCommentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCommentService(&mockCommentRepository{}, &mockPostRepository{}, &mockUserRepository{}, &mockPublisher{})
			_, err := svc.Create(context.Background(), 10, 42, model.CreateCommentRequest{Comment: tt.text})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestCommentService_Create_PostNotFound(t *testing.T) {
	mockPosts := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) {
			return false, nil
		},
	}
	svc := NewCommentService(&mockCommentRepository{}, mockPosts, &mockUserRepository{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), 999, 42, model.CreateCommentRequest{Comment: "hello"})
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got: %v", err)
	}
}

func TestCommentService_GetByPostID_EmptyIsNotNil(t *testing.T) {
	svc := NewCommentService(&mockCommentRepository{}, &mockPostRepository{}, &mockUserRepository{}, &mockPublisher{})

	comments, err := svc.GetByPostID(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if comments == nil {
		t.Error("expected empty slice, got nil")
	}
}
