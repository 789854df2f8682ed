package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logger"
	"yamdb/internal/mailer"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("api server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	db, err := database.ConnectDB(cfg, zl)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.PrometheusEnabled {
		metrics.Init()
	}

	var throttle *middleware.AuthThrottle
	if rdb := database.ConnectRedis(cfg, zl); rdb != nil {
		defer rdb.Close()
		throttle = middleware.NewAuthThrottle(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow, zl)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := service.NewAuthService(
		userRepo,
		mailer.New(cfg, zl),
		service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		zl,
	)
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *middleware.ClientLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:         zl,
		CORSOrigins:    cfg.CORSOrigins,
		ClientLimiter:  limiter,
		AuthThrottle:   throttle,
		Tokens:         authService,
		MetricsEnabled: cfg.PrometheusEnabled,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}, handler.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Title:   handler.NewTitleHandler(titleService),
		Review:  handler.NewReviewHandler(reviewService),
		Comment: handler.NewCommentHandler(commentService),
		User:    handler.NewUserHandler(userService),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		zl.Info("api server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.GoEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		zl.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	zl.Info("server stopped gracefully")
	return nil
}
