package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariachat/server/internal/port/outbound"
	apperrors "github.com/ariachat/server/internal/utils/errors"
	"github.com/ariachat/server/internal/utils/metrics"
)

// Rate limit response headers.
const (
	RateLimitRemaining = "X-RateLimit-Remaining"
	RateLimitLimit     = "X-RateLimit-Limit"
	RetryAfter         = "Retry-After"
)

// RateLimitConfig names one limit. Name namespaces the limiter keys so
// the global and chat windows never share a counter.
type RateLimitConfig struct {
	Name    string
	Limit   int
	Window  time.Duration
	KeyFunc func(*gin.Context) string
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// RateLimit rejects requests over cfg.Limit per cfg.Window with 429. A nil
// limiter or non-positive limit disables it. Limiter errors fail open.
func RateLimit(limiter outbound.RateLimiterPort, cfg RateLimitConfig) gin.HandlerFunc {
	if limiter == nil || cfg.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ByAccountOrIP
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	limit := strconv.Itoa(cfg.Limit)

	return func(c *gin.Context) {
		key := cfg.Name + ":" + cfg.KeyFunc(c)
		d, err := limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			log.Warn("rate limiter unavailable, admitting request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header(RateLimitLimit, limit)
		c.Header(RateLimitRemaining, strconv.Itoa(d.Remaining))
		if d.Allowed {
			c.Next()
			return
		}

		cfg.Metrics.RecordRateLimited(c.FullPath())
		c.Header(RetryAfter, strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
		abortWithError(c, apperrors.RateLimited(""))
	}
}

// ByAccountOrIP keys by authenticated account, falling back to client IP.
func ByAccountOrIP(c *gin.Context) string {
	if id := GetAccountID(c); id != uuid.Nil {
		return "account:" + id.String()
	}
	return ByIP(c)
}

// ByIP keys by client IP.
func ByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}
