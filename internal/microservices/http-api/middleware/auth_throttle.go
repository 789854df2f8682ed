package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"yamdb/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// windowCounter counts hits of key inside a fixed window.
type windowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	client redis.Cmdable
}

// Hit increments the counter and arms its TTL in one MULTI/EXEC. ExpireNX
// leaves a running window untouched and repairs a key that has no TTL.
func (r redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// AuthThrottle limits signup and token attempts per client across all API
// instances. Redis errors let the request through.
type AuthThrottle struct {
	counter windowCounter
	limit   int64
	window  time.Duration
	logger  *zap.Logger
}

func NewAuthThrottle(client redis.Cmdable, limit int, window time.Duration, logger *zap.Logger) *AuthThrottle {
	return &AuthThrottle{
		counter: redisCounter{client: client},
		limit:   int64(limit),
		window:  window,
		logger:  logger,
	}
}

func (t *AuthThrottle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if t == nil || t.limit <= 0 {
			c.Next()
			return
		}

		key := "yamdb:auth:" + c.FullPath() + ":" + c.ClientIP()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		n, err := t.counter.Hit(ctx, key, t.window)
		cancel()
		if err != nil {
			t.logger.Warn("auth throttle unavailable", zap.Error(err))
			c.Next()
			return
		}

		if n > t.limit {
			metrics.RateLimited.WithLabelValues("auth").Inc()
			c.Header("Retry-After", strconv.Itoa(int(t.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "request was throttled"})
			return
		}
		c.Next()
	}
}
