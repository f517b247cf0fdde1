package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"instashare/internal/config"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret",
		TokenMaxAge: 86400,
	}
}

func TestAuthService_IssueToken_Claims(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	signed, err := svc.IssueToken(42, "alice")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if !token.Valid {
		t.Fatal("token should be valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected MapClaims")
	}

	if got := int64(claims["user_id"].(float64)); got != 42 {
		t.Errorf("user_id = %d, want 42", got)
	}
	if got := claims["username"].(string); got != "alice" {
		t.Errorf("username = %q, want %q", got, "alice")
	}

	// Lifetime is exactly TokenMaxAge seconds from issuance
	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	if exp-iat != 86400 {
		t.Errorf("exp-iat = %d, want 86400", exp-iat)
	}

	now := time.Now().Unix()
	if iat < now-5 || iat > now+5 {
		t.Errorf("iat = %d not close to now = %d", iat, now)
	}
}

func TestAuthService_IssueToken_WrongSecretFails(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	signed, err := svc.IssueToken(42, "alice")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("a-different-secret"), nil
	})
	if err == nil {
		t.Error("token should not verify under a different secret")
	}
}
