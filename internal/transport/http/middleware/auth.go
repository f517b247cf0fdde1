package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"instashare/internal/httputil"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"

	// UsernameKey is the context key for the authenticated user's username
	UsernameKey contextKey = "username"
)

// AuthMiddleware creates a middleware that validates bearer tokens from the
// Authorization header. Every rejection path returns the same 401 shape so
// a caller can't distinguish a missing token from a forged or expired one.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseBearerToken(r, jwtSecret)
			if !ok {
				httputil.WriteUnauthorized(w, "Invalid or missing authentication token")
				return
			}

			ctx := contextWithClaims(r.Context(), claims)
			if ctx == nil {
				httputil.WriteUnauthorized(w, "Invalid or missing authentication token")
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a valid token
// is present but lets the request through either way. Used on public reads
// that personalize output (like state) for signed-in viewers.
func OptionalAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := parseBearerToken(r, jwtSecret); ok {
				if ctx := contextWithClaims(r.Context(), claims); ctx != nil {
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseBearerToken extracts and validates the token from the Authorization
// header. Returns the claims and whether validation succeeded.
func parseBearerToken(r *http.Request, jwtSecret string) (jwt.MapClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	tokenString := parts[1]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	return claims, true
}

// contextWithClaims stores user_id and username from the claims.
// Returns nil when the claims don't carry a usable user_id.
func contextWithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil
	}

	ctx = context.WithValue(ctx, UserIDKey, int64(userIDFloat))
	if username, ok := claims["username"].(string); ok {
		ctx = context.WithValue(ctx, UsernameKey, username)
	}
	return ctx
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetUsernameFromContext extracts the username from the request context
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}
