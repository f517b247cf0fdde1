package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"instashare/internal/handler"
	"instashare/internal/httputil"
	authmw "instashare/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	StoryHandler   *handler.StoryHandler
	JWTSecret      string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	// Public reads with optional authentication (personalizes like state)
	r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/posts", cfg.PostHandler.List)
	r.Get("/posts/{postID}/comments", cfg.CommentHandler.List)
	r.Get("/stories", cfg.StoryHandler.List)
	r.With(authmw.OptionalAuthMiddleware(cfg.JWTSecret)).Get("/users/{userID}", cfg.UserHandler.GetProfile)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Put("/me/profile", cfg.UserHandler.UpdateMyProfile)

		// Post endpoints
		r.Post("/posts", cfg.PostHandler.Create)
		r.Post("/posts/{postID}/like", cfg.PostHandler.ToggleLike)
		r.Post("/posts/{postID}/comments", cfg.CommentHandler.Create)

		// Story endpoints
		r.Post("/stories", cfg.StoryHandler.Create)
	})

	return r
}
