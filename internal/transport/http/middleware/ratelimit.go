package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 超过该数量的 IP 桶时清理闲置桶
const (
	maxIPBuckets = 10000
	ipBucketIdle = 3 * time.Minute
)

// RateLimit 全局令牌桶
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if !lim.Allow() {
			reject(c, http.StatusTooManyRequests, "rate")
			return
		}
		c.Next()
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitPerIP 按 ClientIP 分桶
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*ipBucket)
	return func(c *gin.Context) {
		now := time.Now()
		mu.Lock()
		b, ok := buckets[c.ClientIP()]
		if !ok {
			if len(buckets) >= maxIPBuckets {
				for ip, old := range buckets {
					if now.Sub(old.seen) > ipBucketIdle {
						delete(buckets, ip)
					}
				}
			}
			b = &ipBucket{lim: rate.NewLimiter(rps, burst)}
			buckets[c.ClientIP()] = b
		}
		b.seen = now
		allowed := b.lim.AllowN(now, 1)
		mu.Unlock()

		if !allowed {
			reject(c, http.StatusTooManyRequests, "rate_ip")
			return
		}
		c.Next()
	}
}
