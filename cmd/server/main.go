package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"quizlive/internal/cache"
	"quizlive/internal/config"
	"quizlive/internal/queue"
	"quizlive/internal/repository"
	"quizlive/internal/service"
	"quizlive/internal/transport/rest"
	"quizlive/internal/transport/ws"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// @title Quiz Live API
// @version 1.0
// @description Live classroom quiz sessions
// @host localhost:8080
// @BasePath /v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.Level()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return err
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)
	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer rdb.Close()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return err
	}
	logger.Info("connected to Redis", "addr", cfg.RedisAddr())

	// Repositories and caches
	userRepo := repository.NewUserRepo(db)
	quizRepo := repository.NewQuizRepo(db)
	liveRepo := repository.NewLiveRepo(db)
	liveCache := cache.NewLiveCache(rdb, cfg.LiveTTL, cfg.LiveCASRetries)

	g, gctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(gctx, logger)

	store := service.NewLiveStore(liveCache, liveRepo, logger)
	store.SetPublisher(hub)
	if cfg.AMQPURL != "" {
		events, err := queue.Dial(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer events.Close()
		store.SetNotifier(events)
		logger.Info("publishing completed lives", "queue", queue.CompletedQueue)
	}

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	quizSvc := service.NewQuizService(quizRepo, cfg.QuizCacheTTL)
	liveSvc := service.NewLiveService(store, quizSvc, authSvc, rand.Reader, logger)

	router := rest.NewRouter(&rest.Container{
		AuthService:    authSvc,
		QuizService:    quizSvc,
		LiveService:    liveSvc,
		WSHub:          hub,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
