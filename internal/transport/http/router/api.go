package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"user-service/internal/core/server"
	"user-service/internal/transport/http/handler"
	mdw "user-service/internal/transport/http/middleware"
)

type APIOptions struct {
	RPS           float64
	Burst         int
	PerIP         bool
	MaxConcurrent int64
	MaxBodyBytes  int64
	Timeout       time.Duration // <= 0 不挂超时中间件
}

func (o APIOptions) withDefaults() APIOptions {
	if o.RPS <= 0 {
		o.RPS = 200
	}
	if o.Burst <= 0 {
		o.Burst = 400
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 300
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	return o
}

func NewAPIEngine(l *zap.Logger, opt APIOptions, mods ...APIModule) *gin.Engine {
	opt = opt.withDefaults()
	r := server.NewRouter(l, mdw.RequestID(), mdw.AccessLog(l))

	limiter := mdw.RateLimit(rate.Limit(opt.RPS), opt.Burst)
	if opt.PerIP {
		limiter = mdw.RateLimitPerIP(rate.Limit(opt.RPS), opt.Burst)
	}
	r.Use(
		mdw.Metrics(),
		limiter,
		mdw.ConcurrencyLimit(opt.MaxConcurrent),
		mdw.MaxBodyBytes(opt.MaxBodyBytes),
	)
	if opt.Timeout > 0 {
		r.Use(mdw.Timeout(opt.Timeout))
	}

	r.GET("/health", handler.Health)
	MountAll(r, mods...)
	return r
}
