package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/strength-service/internal/analytics"
	"github.com/enterprise/strength-service/internal/auth"
	"github.com/enterprise/strength-service/internal/services"
	"github.com/enterprise/strength-service/internal/strength"
)

const sourceAPI = "api"

func healthHandler(checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := gin.H{}
		for name, check := range checks {
			if err := check.HealthCheck(ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[name] = err.Error()
				continue
			}
			components[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "degraded"
		}

		c.JSON(status, gin.H{
			"status":     state,
			"components": components,
			"timestamp":  time.Now().Format(time.RFC3339),
		})
	}
}

func assessHandler(svc *services.CredentialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.AssessRequest
		if !bindJSON(c, &req) {
			return
		}

		resp, err := svc.Assess(c.Request.Context(), &req, sourceAPI)
		if err != nil {
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func assessBatchHandler(svc *services.CredentialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.BatchAssessRequest
		if !bindJSON(c, &req) {
			return
		}

		resp, err := svc.AssessBatch(c.Request.Context(), &req, sourceAPI)
		if err != nil {
			if errors.Is(err, services.ErrEmptyBatch) || errors.Is(err, services.ErrBatchTooLarge) {
				badRequest(c, err)
				return
			}
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func scaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"max_score": strength.MaxScore,
			"levels":    strength.Scale(),
		})
	}
}

func hashHandler(svc *services.CredentialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.HashRequest
		if !bindJSON(c, &req) {
			return
		}

		resp, err := svc.Hash(c.Request.Context(), &req, sourceAPI)
		if err != nil {
			var weak *services.WeakPasswordError
			if errors.As(err, &weak) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":      "weak_password",
					"message":    err.Error(),
					"assessment": weak.Assessment,
				})
				return
			}
			if errors.Is(err, services.ErrPasswordTooLong) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":     "password_too_long",
					"message":   err.Error(),
					"max_bytes": services.MaxHashBytes,
				})
				return
			}
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func statsHandler(stats StatsReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if stats == nil {
			unavailable(c)
			return
		}

		snap, err := stats.LoadSnapshot(c.Request.Context())
		if err != nil {
			if errors.Is(err, analytics.ErrNoSnapshot) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
				return
			}
			internalError(c, err)
			return
		}

		operatorID, _ := auth.GetOperatorIDFromContext(c)
		log.Info().Str("operator_id", operatorID.String()).Msg("Analytics snapshot read")

		c.JSON(http.StatusOK, snap)
	}
}

func recentHandler(stats StatsReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if stats == nil {
			unavailable(c)
			return
		}

		limit := getIntParam(c, "limit", 50)
		if limit > 1000 {
			limit = 1000
		}

		recent, err := stats.Recent(c.Request.Context(), limit)
		if err != nil {
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"events": recent, "count": len(recent)})
	}
}

// bindJSON writes the error response itself when it returns false
func bindJSON(c *gin.Context, dest interface{}) bool {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "body_too_large",
			"message": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		})
		return false
	}

	badRequest(c, err)
	return false
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
}

func unavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":   "unavailable",
		"message": "analytics store is not configured",
	})
}

func internalError(c *gin.Context, err error) {
	log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal server error"})
}

func getIntParam(c *gin.Context, key string, defaultValue int) int {
	if val := c.Query(key); val != "" {
		if result, err := strconv.Atoi(val); err == nil && result > 0 {
			return result
		}
	}
	return defaultValue
}
