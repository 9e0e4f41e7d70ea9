package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"todoapp/backend/internal/logger"
	"todoapp/backend/internal/metrics"
)

// RateLimiter は Redis の INCR/EXPIRE を使った固定ウィンドウ方式のレート制限です。
// client が nil の場合、または Redis がエラーを返した場合はリクエストを通します (fail-open)。
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter は新しいRateLimiterを作成します。
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

func (l *RateLimiter) key(ident string) string {
	return "rl:todo:" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + ident
}

// Middleware はクライアントIPごとにリクエスト数を数えるミドルウェアを返します。
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.client == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := l.key(c.ClientIP())

		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if count == 1 {
			// 最初のリクエストでウィンドウの期限を設定
			if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
				logger.Warn("failed to set rate limit expiry", "key", key, "error", err)
			}
		}

		remaining := int64(l.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(l.limit) {
			metrics.RateLimitBlocked.WithLabelValues(routeLabel(c)).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
