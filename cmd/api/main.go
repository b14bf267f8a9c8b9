package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pratik-mahalle/upscaler/internal/api/handlers"
	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/api/router"
	"github.com/pratik-mahalle/upscaler/internal/config"
	"github.com/pratik-mahalle/upscaler/internal/integrations"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/validator"
	"github.com/pratik-mahalle/upscaler/internal/repository/postgres"
	"github.com/pratik-mahalle/upscaler/internal/services"
	"github.com/pratik-mahalle/upscaler/internal/storage"
	"github.com/pratik-mahalle/upscaler/internal/worker"
	"github.com/pratik-mahalle/upscaler/migrations"
)

// @title Upscaler API
// @version 1.0
// @description Image upscaling gateway, credit ledger and upscale history.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
		Service:    "upscaler-api",
	})

	if err := run(cfg, log); err != nil {
		log.ErrorWithErr(err, "Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := postgres.RunMigrations(db, migrations.Files)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if len(applied) > 0 {
			log.WithFields(map[string]interface{}{
				"applied": applied,
			}).Info("Database migrations applied")
		}
	}

	// Blob storage for upscaled images
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	if store != nil {
		defer store.Close()
		log.With("storage", store.Name()).Info("Image offload enabled")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	imageRepo := postgres.NewImageRepository(db)

	// Services
	profileService := services.NewProfileService(profileRepo, cfg.Auth.FreeCredits, log)
	userService := services.NewAuthService(userRepo, profileService, cfg.Auth.BCryptCost, log)
	imageService := services.NewImageService(imageRepo, store, cfg.Storage.Prefix, log)

	upstream := integrations.NewClipdropClient(cfg.Upscaler.APIKey, cfg.Upscaler.APIURL, cfg.Upscaler.Timeout)
	gateway := services.NewUpscaleService(
		upstream,
		services.NewImageFetcher(cfg.Upscaler.FetchTimeout, cfg.Upscaler.MaxFetchSize),
		log,
	)
	if !gateway.Configured() {
		log.Warn("CLIPDROP_API_KEY is not set; upscale requests will fail with a configuration error")
	}

	// Handlers
	h := &router.Handlers{
		Health:  handlers.NewHealthHandler(db, gateway, log),
		Auth:    handlers.NewAuthHandler(userService, cfg, log, validator.New()),
		Upscale: handlers.NewUpscaleHandler(gateway, log, cfg.Server.MaxBodyBytes, cfg.Server.IsProduction()),
		Credits: handlers.NewCreditsHandler(profileService, log),
		Images:  handlers.NewImageHandler(imageService, log, cfg.Server.MaxBodyBytes),
		Profile: handlers.NewProfileHandler(profileService, log),
	}

	limiters, closeLimiters := buildLimiters(ctx, cfg, log)
	defer closeLimiters()

	// Background jobs
	collector := worker.NewStatsCollector(profileRepo, imageRepo, cfg.Jobs.StatsSchedule, log)
	if err := collector.Start(ctx); err != nil {
		log.WithError(err).Warn("Stats collector not started")
	} else {
		defer collector.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.New(cfg, log, h, limiters),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
			"db_driver":   cfg.Database.Driver,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server shut down gracefully")
	return nil
}

// buildLimiters uses Redis when enabled and reachable, in-process token
// buckets otherwise
func buildLimiters(ctx context.Context, cfg *config.Config, log *logger.Logger) (router.Limiters, func()) {
	general := middleware.NewMemoryLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go general.Run(ctx, 5*time.Minute)

	if cfg.Redis.Enabled {
		client, err := newRedisClient(cfg.Redis)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = client.Ping(pingCtx).Err()
			cancel()
			if err == nil {
				log.Info("Using Redis for upscale rate limiting")
				return router.Limiters{
					General: general,
					Upscale: middleware.NewRedisLimiter(client, "upscaler:ratelimit", cfg.RateLimit.UpscalePerMinute, time.Minute),
				}, func() { client.Close() }
			}
			client.Close()
		}
		log.WithError(err).Warn("Redis unavailable, falling back to in-memory rate limiting")
	}

	perSecond := float64(cfg.RateLimit.UpscalePerMinute) / 60
	upscale := middleware.NewMemoryLimiter(perSecond, cfg.RateLimit.UpscalePerMinute)
	go upscale.Run(ctx, 5*time.Minute)

	return router.Limiters{General: general, Upscale: upscale}, func() {}
}

func newRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}
