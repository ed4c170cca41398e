package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "academy/internal/errors"
	"academy/internal/logger"
)

const (
	// ContextActor is the gin context key naming a non-user caller.
	ContextActor = "actor"
	// SchedulerActor is the actor recorded for requests carrying the
	// scheduler key.
	SchedulerActor = "scheduler"

	apiKeyHeader = "X-API-Key"
)

// SchedulerAuthMiddleware guards the routes an external cron calls. The
// caller must send the configured key in X-API-Key; an unset key disables
// the routes entirely. Rejections are logged with the caller's address.
func SchedulerAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(
			"request_id", RequestID(c),
			"client_ip", c.ClientIP(),
			"path", c.FullPath(),
		)

		if apiKey == "" {
			log.Errorw("scheduler request rejected", "reason", "SCHEDULER_API_KEY is not set")
			abortWithAppError(c, apperrors.ErrSchedulerNotConfigured)
			return
		}

		key := c.GetHeader(apiKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			reason := "wrong key"
			if key == "" {
				reason = "missing key"
			}
			log.Warnw("scheduler request rejected", "reason", reason)
			abortWithAppError(c, apperrors.ErrInvalidAPIKey)
			return
		}

		c.Set(ContextActor, SchedulerActor)
		c.Next()
	}
}
