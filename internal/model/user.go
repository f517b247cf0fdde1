package model

import (
	"errors"
	"time"
)

// DefaultProfilePic is used when a user has not uploaded a picture yet.
const DefaultProfilePic = "https://via.placeholder.com/150"

// User represents a user in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	Email          *string   `db:"email" json:"email"`
	ProfilePic     string    `db:"profile_pic" json:"profile_pic"`
	Bio            string    `db:"bio" json:"bio"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the lightweight user shape joined onto posts, comments and stories.
type UserSummary struct {
	ID         int64  `db:"id" json:"id"`
	Username   string `db:"username" json:"username"`
	ProfilePic string `db:"profile_pic" json:"profile_pic"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned after successful registration or login.
// The token is a self-contained 24h bearer credential; the server keeps
// no session state for it.
type AuthResponse struct {
	JWTToken string `json:"jwt_token"`
	User     *User  `json:"user"`
}

// UpdateProfileRequest carries the mutable profile fields. A nil field
// means "leave unchanged".
type UpdateProfileRequest struct {
	Bio           *string
	ProfilePicURL *string
}

// Profile is a user's public profile with their content attached.
type Profile struct {
	User       *User            `json:"user"`
	Posts      []PostThumbnail  `json:"posts"`
	PostsCount int              `json:"posts_count"`
	Stories    []StoryThumbnail `json:"stories"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when the email is already registered
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect.
	// Deliberately shared between "unknown username" and "wrong password" so
	// the API cannot be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
