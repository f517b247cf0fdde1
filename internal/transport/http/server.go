package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"instashare/internal/cache"
	"instashare/internal/config"
	"instashare/internal/database"
	"instashare/internal/handler"
	"instashare/internal/queue"
	redisclient "instashare/internal/redis"
	"instashare/internal/repository"
	"instashare/internal/service"
	"instashare/internal/worker"
)

// Run wires every layer together and serves until SIGINT/SIGTERM.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis
	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	log.Println("Connected to Redis successfully")

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	storyRepo := repository.NewStoryRepository(db)

	// 5. Queue and cache
	publisher := queue.NewPublisher(rdb.Client)
	consumer := queue.NewConsumer(rdb.Client)
	storyCache := cache.NewStoryCache(rdb.Client)

	// 6. Services
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo, postRepo, storyRepo)
	postService := service.NewPostService(postRepo, commentRepo, publisher)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, publisher)
	storyService := service.NewStoryService(storyRepo, storyCache, publisher)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// 7. Background workers (counter audit, story indexing, expiry sweep)
	workerCfg := worker.DefaultManagerConfig()
	workerCfg.SweepInterval = time.Duration(cfg.StorySweepInterval) * time.Second
	manager := worker.NewManager(
		consumer,
		worker.NewHandler(postRepo, storyCache, storyRepo),
		workerCfg,
	)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer manager.Stop()

	// 8. HTTP surface
	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService),
		UserHandler:    handler.NewUserHandler(userService, mediaService),
		PostHandler:    handler.NewPostHandler(postService, mediaService),
		CommentHandler: handler.NewCommentHandler(commentService),
		StoryHandler:   handler.NewStoryHandler(storyService, mediaService),
		JWTSecret:      cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// 9. Serve until a shutdown signal arrives
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Printf("Received signal %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
