package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"instashare/internal/config"
)

// AuthService mints stateless bearer tokens. A token is a signed, self
// contained credential carrying the user's id and username; the server
// keeps no session table and there is no refresh or revocation. Once
// issued, a token stays valid until its fixed expiry.
type AuthService struct {
	config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// IssueToken signs a token for a verified identity. Valid for exactly
// TokenMaxAge seconds (24h by default) from issuance.
func (s *AuthService) IssueToken(userID int64, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Duration(s.config.TokenMaxAge) * time.Second).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
