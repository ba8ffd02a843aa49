package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guestbook/internal/cache"
	"guestbook/internal/config"
	"guestbook/internal/database"
	"guestbook/internal/handler"
	"guestbook/internal/identity"
	"guestbook/internal/queue"
	"guestbook/internal/realtime"
	"guestbook/internal/redis"
	"guestbook/internal/repository"
	"guestbook/internal/service"
	"guestbook/internal/storage"
	"guestbook/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database and make sure the schema exists
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	messageRepo := repository.NewMessageRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// 3. Change stream. Without Redis the guestbook works, minus live updates.
	var (
		publisher   queue.Publisher
		redisPinger handler.Pinger
		manager     *worker.Manager
	)
	hub := realtime.NewHub()

	rc, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("[WARN] Redis unavailable, live updates disabled: %v", err)
	} else {
		defer rc.Close()
		publisher = queue.NewPublisher(rc.Client)
		redisPinger = rc

		manager = worker.NewManager(queue.NewConsumer(rc.Client), worker.NewHandler(hub), worker.DefaultManagerConfig())
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start change stream workers: %w", err)
		}
		defer manager.Stop()
	}

	// 4. Attachment storage is optional
	var blobs storage.BlobStore
	var mediaService *service.MediaService
	if r2, err := storage.NewR2Store(ctx, cfg); err != nil {
		log.Printf("[WARN] Attachment storage disabled: %v", err)
	} else {
		blobs = r2
		mediaService = service.NewMediaService(r2, cfg.App)
	}

	// 5. Services
	feedService := service.NewFeedService(messageRepo, replyRepo, likeRepo, cfg.App)
	messageService := service.NewMessageService(messageRepo, likeRepo, blobs, publisher, cfg.App)
	replyService := service.NewReplyService(replyRepo, publisher, cfg.App)
	statsService := service.NewStatsService(statsRepo)

	if rc != nil {
		popular := cache.NewPopularCache(rc.Client)
		feedService.WithPopularCache(popular)
		invalidate := func(table, event, affectedID string) {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = popular.Invalidate(ctx)
			}()
		}
		hub.Subscribe(queue.TableMessages, realtime.Wildcard, invalidate)
		hub.Subscribe(queue.TableLikes, realtime.Wildcard, invalidate)
	}

	secret := cfg.IdentitySecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate identity secret: %w", err)
		}
		log.Printf("[WARN] IDENTITY_SECRET not set, using a random secret; display names reset on restart")
	}
	identityStore := identity.NewCookieStore(secret, cfg.IdentityMaxAge, cfg.IdentitySecure)

	// 6. Handlers and routes
	routerCfg := RouterConfig{
		MessageHandler:  handler.NewMessageHandler(feedService, messageService, identityStore),
		ReplyHandler:    handler.NewReplyHandler(replyService),
		StatsHandler:    handler.NewStatsHandler(statsService),
		IdentityHandler: handler.NewIdentityHandler(identityStore),
		HealthHandler:   handler.NewHealthHandler(feedService, redisPinger),
		IdentityStore:   identityStore,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
	}
	if mediaService != nil {
		routerCfg.AttachmentHandler = handler.NewAttachmentHandler(mediaService, cfg.App.MaxFileSize)
	}
	if manager != nil {
		routerCfg.EventsHandler = handler.NewEventsHandler(hub)
	}

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	// 7. Serve until interrupted
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
