package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"instashare/internal/model"
	"instashare/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo      repository.UserRepository
	postRepo  repository.PostRepository
	storyRepo repository.StoryRepository
}

func NewUserService(repo repository.UserRepository, postRepo repository.PostRepository, storyRepo repository.StoryRepository) *UserService {
	return &UserService{
		repo:      repo,
		postRepo:  postRepo,
		storyRepo: storyRepo,
	}
}

// Register creates a new user account with a one-way-hashed password.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	// Check if username already exists
	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       strings.TrimSpace(req.Username),
		PasswordHashed: string(hashedPassword),
		Email:          req.Email,
	}

	// Save to database. The unique constraints catch the race where two
	// registrations with the same username pass the existence check
	// concurrently; Create reports that as ErrUsernameExists.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	// Get user by username
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	// Compare password with hash
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a user's profile with their post and story
// thumbnails. The user lookup fails fast with ErrUserNotFound; thumbnail
// loads after that are expected to succeed or the whole request fails.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetUserThumbnails(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile posts: %w", err)
	}

	stories, err := s.storyRepo.GetUserThumbnails(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile stories: %w", err)
	}

	if posts == nil {
		posts = []model.PostThumbnail{}
	}
	if stories == nil {
		stories = []model.StoryThumbnail{}
	}

	return &model.Profile{
		User:       user,
		Posts:      posts,
		PostsCount: len(posts),
		Stories:    stories,
	}, nil
}

// UpdateProfile updates the caller's bio and/or profile picture.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	return s.repo.UpdateProfile(ctx, userID, req.Bio, req.ProfilePicURL)
}
