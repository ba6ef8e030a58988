package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/enterprise/strength-service/internal/analytics"
	"github.com/enterprise/strength-service/internal/auth"
	"github.com/enterprise/strength-service/internal/events"
	"github.com/enterprise/strength-service/internal/ratelimit"
	"github.com/enterprise/strength-service/internal/services"
)

// StatsReader serves the analytics endpoint
type StatsReader interface {
	LoadSnapshot(ctx context.Context) (*analytics.Snapshot, error)
	Recent(ctx context.Context, n int) ([]*events.AssessmentEvent, error)
}

// HealthChecker is a dependency reported by /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies are the components the router wires into handlers
type Dependencies struct {
	Credentials *services.CredentialService
	JWTManager  *auth.JWTManager
	Limiter     ratelimit.Limiter
	Stats       StatsReader
	Health      map[string]HealthChecker
}

// NewRouter builds the Gin engine with middleware and routes
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", healthHandler(deps.Health))

	v1 := router.Group("/api/v1")
	if deps.Limiter != nil {
		v1.Use(ratelimit.Middleware(deps.Limiter))
	}

	password := v1.Group("/password")
	password.Use(noStoreMiddleware())
	password.Use(bodyLimitMiddleware(MaxBodyBytes))
	{
		password.POST("/strength", assessHandler(deps.Credentials))
		password.POST("/strength/batch", assessBatchHandler(deps.Credentials))
		password.GET("/strength/scale", scaleHandler())
		password.POST("/hash", hashHandler(deps.Credentials))
	}

	stats := v1.Group("/stats")
	if deps.JWTManager == nil {
		stats.Use(func(c *gin.Context) { unavailable(c); c.Abort() })
	} else {
		stats.Use(auth.AuthMiddleware(deps.JWTManager))
		stats.Use(auth.RoleMiddleware(auth.RoleAdmin, auth.RoleAnalyst))
	}
	{
		stats.GET("", statsHandler(deps.Stats))
		stats.GET("/recent", recentHandler(deps.Stats))
	}

	return router
}
