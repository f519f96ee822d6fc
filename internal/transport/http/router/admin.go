package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"user-service/internal/core/server"
	"user-service/internal/transport/http/handler"
	mdw "user-service/internal/transport/http/middleware"
	resp "user-service/internal/transport/http/response"
)

// ReadyCheck 依赖探活（db、redis）
type ReadyCheck func(ctx context.Context) error

// NewAdminEngine 运维端口：/health /ready /metrics
func NewAdminEngine(l *zap.Logger, checks map[string]ReadyCheck) *gin.Engine {
	r := server.NewRouter(l, mdw.RequestID())

	r.GET("/health", handler.Health)
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		for name, check := range checks {
			if err := check(ctx); err != nil {
				l.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.Error(http.StatusServiceUnavailable, name+": "+err.Error()))
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"ready": true}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
