package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimit 同时处理的请求上限；排队期间客户端断开或超时则 503
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			reject(c, http.StatusServiceUnavailable, "concurrency")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
