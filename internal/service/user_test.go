package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"instashare/internal/model"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	updateProfileFn    func(ctx context.Context, userID int64, bio, profilePic *string) (*model.User, error)

	// Track calls for assertions
	createCalls []createCall
}

type createCall struct {
	User *model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, createCall{User: user})
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, userID int64, bio, profilePic *string) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, bio, profilePic)
	}
	return nil, model.ErrUserNotFound
}

func newTestUserService(repo *mockUserRepository) *UserService {
	return NewUserService(repo, &mockPostRepository{}, &mockStoryRepository{})
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, nil // Username doesn't exist
		},
		createFn: func(ctx context.Context, user *model.User) error {
			// Simulate database setting ID and timestamps
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := newTestUserService(mockRepo)

	req := &model.RegisterRequest{
		Username: "testuser",
		Password: "securepassword123",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user == nil {
		t.Fatal("expected user, got nil")
	}

	if user.Username != req.Username {
		t.Errorf("username = %q, want %q", user.Username, req.Username)
	}

	// Verify password was hashed (not stored in plain text!)
	if user.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Errorf("stored hash does not verify against the password: %v", err)
	}

	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_UsernameExists(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestUserService(mockRepo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "taken",
		Password: "password123",
	})

	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got: %v", err)
	}
	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called when the username is taken")
	}
}

// Two registrations with the same username can both pass the existence check;
// the database's unique constraint settles it and the repository reports the
// loser as ErrUsernameExists.
func TestUserService_Register_DuplicateRace(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			return model.ErrUsernameExists
		},
	}
	svc := newTestUserService(mockRepo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "racer",
		Password: "password123",
	})

	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got: %v", err)
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "password123"},
		{"whitespace username", "   ", "password123"},
		{"empty password", "user", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestUserService(&mockUserRepository{})
			_, err := svc.Register(context.Background(), &model.RegisterRequest{
				Username: tt.username,
				Password: tt.password,
			})
			if err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestUserService_Login_Success(t *testing.T) {
	password := "correcthorse"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	mockRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 7, Username: username, PasswordHashed: string(hash)}, nil
		},
	}
	svc := newTestUserService(mockRepo)

	user, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "alice",
		Password: password,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("user.ID = %d, want 7", user.ID)
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.DefaultCost)

	mockRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 7, Username: username, PasswordHashed: string(hash)}, nil
		},
	}
	svc := newTestUserService(mockRepo)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "alice",
		Password: "wrongpassword",
	})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

// Unknown usernames fail with the same error as wrong passwords so the
// response never reveals which accounts exist.
func TestUserService_Login_UnknownUser(t *testing.T) {
	svc := newTestUserService(&mockUserRepository{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestUserService_GetProfile(t *testing.T) {
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	postRepo := &mockPostRepository{
		getUserThumbnailsFn: func(ctx context.Context, userID int64) ([]model.PostThumbnail, error) {
			return []model.PostThumbnail{{ID: 1}, {ID: 2}}, nil
		},
	}
	storyRepo := &mockStoryRepository{
		getUserThumbnailsFn: func(ctx context.Context, userID int64) ([]model.StoryThumbnail, error) {
			return []model.StoryThumbnail{{ID: 9}}, nil
		},
	}
	svc := NewUserService(mockRepo, postRepo, storyRepo)

	profile, err := svc.GetProfile(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if profile.PostsCount != 2 {
		t.Errorf("posts_count = %d, want 2", profile.PostsCount)
	}
	if len(profile.Stories) != 1 {
		t.Errorf("len(stories) = %d, want 1", len(profile.Stories))
	}
}

func TestUserService_GetProfile_UserNotFound(t *testing.T) {
	svc := newTestUserService(&mockUserRepository{})

	_, err := svc.GetProfile(context.Background(), 999)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestUserService_GetProfile_EmptyThumbnailsAreNotNil(t *testing.T) {
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "bob"}, nil
		},
	}
	svc := newTestUserService(mockRepo)

	profile, err := svc.GetProfile(context.Background(), 8)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if profile.Posts == nil {
		t.Error("posts should be an empty slice, not nil")
	}
	if profile.Stories == nil {
		t.Error("stories should be an empty slice, not nil")
	}
}
