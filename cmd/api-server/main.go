package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/strength-service/configs"
	"github.com/enterprise/strength-service/internal/analytics"
	"github.com/enterprise/strength-service/internal/api"
	"github.com/enterprise/strength-service/internal/auth"
	"github.com/enterprise/strength-service/internal/cache"
	"github.com/enterprise/strength-service/internal/entropy"
	"github.com/enterprise/strength-service/internal/events"
	"github.com/enterprise/strength-service/internal/logging"
	"github.com/enterprise/strength-service/internal/ratelimit"
	"github.com/enterprise/strength-service/internal/services"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := configs.Load()
	logging.Setup(cfg.Server.Environment)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Bool("redis", cfg.Redis.Enabled).
		Bool("kafka", cfg.Kafka.Enabled).
		Msg("Starting Credential Strength API Server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := api.Dependencies{
		JWTManager: auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration),
		Health:     map[string]api.HealthChecker{},
	}

	// Redis backs the shared rate limit and the analytics read model
	if cfg.Redis.Enabled {
		cacheClient, err := cache.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer cacheClient.Close()

		deps.Limiter = ratelimit.NewRedisLimiter(cacheClient.Redis(), cfg.Redis.KeyPrefix, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		deps.Stats = analytics.NewStore(cacheClient, cfg.Analytics.RecentEvents)
		deps.Health["redis"] = cacheClient
	} else {
		limiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		go limiter.Run(ctx)
		deps.Limiter = limiter
	}

	var publisher events.Publisher = events.NewLogPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Kafka producer")
		}
		publisher = kafkaPublisher
	}
	defer publisher.Close()

	deps.Credentials = services.NewCredentialService(entropy.NewEstimator(cfg.Entropy.Dictionary...), publisher, auth.HashPassword)

	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
