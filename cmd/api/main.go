package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"user-service/internal/core/cache"
	"user-service/internal/core/config"
	"user-service/internal/core/database"
	"user-service/internal/core/logger"
	"user-service/internal/core/server"
	"user-service/internal/repo"
	"user-service/internal/service"
	"user-service/internal/transport/http/handler"
	"user-service/internal/transport/http/router"
	"user-service/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Log.File != "" {
		if err := ensureParentDir(cfg.Log.File); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	log, cleanup := logger.New(loggerOptions(cfg.Log))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.WarnLevel)()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	// 数据库 + 建表（失败直接 Fatal，不对外服务）
	db := mustOpenDB(cfg, log)
	defer func() { _ = database.Close(db) }()
	userRepo := repo.NewUserRepo(db)
	if err := userRepo.InitSchema(context.Background()); err != nil {
		log.Fatal("init schema failed", zap.Error(err))
	}
	logger.Lifecycle(log, "database ready")

	hasher := &utils.PasswordHasher{
		Time:      cfg.Hash.Time,
		MemoryKiB: cfg.Hash.MemoryKiB,
		Threads:   cfg.Hash.Threads,
		SaltLen:   cfg.Hash.SaltLen,
		KeyLen:    cfg.Hash.KeyLen,
	}
	svcOpts := []service.Option{service.WithLogger(log)}
	checks := map[string]router.ReadyCheck{
		"db": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		c.Prefix = cfg.App.Name + ":"
		defer func() { _ = c.Close() }()
		svcOpts = append(svcOpts, service.WithCache(c, time.Duration(cfg.Redis.TTLSec)*time.Second))
		checks["redis"] = c.Ping
	}
	userSvc := service.NewUserService(userRepo, hasher, svcOpts...)

	r := router.NewAPIEngine(log, router.APIOptions{
		RPS:           cfg.Limits.RPS,
		Burst:         cfg.Limits.Burst,
		PerIP:         cfg.Limits.PerIP,
		MaxConcurrent: cfg.Limits.MaxConcurrent,
		MaxBodyBytes:  cfg.Limits.MaxBodyBytes,
		Timeout:       time.Duration(cfg.Limits.TimeoutSec) * time.Second,
	}, handler.NewUserHandler(userSvc))

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	servers := []*http.Server{srv}

	var adminSrv *http.Server
	if cfg.App.Admin.Port > 0 {
		adminAddr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
		adminSrv = server.BuildServer(adminAddr, router.NewAdminEngine(log, checks),
			5*time.Second, 10*time.Second, 60*time.Second)
		servers = append(servers, adminSrv)
	}

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("db_driver", cfg.DB.Driver),
	)

	for _, s := range servers {
		go func(s *http.Server) {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("listen failed", zap.String("addr", s.Addr), zap.Error(err))
			}
		}(s)
	}
	logger.Lifecycle(log, "user api started on "+addr)

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, s := range servers {
		_ = s.Shutdown(ctx)
	}
	logger.Lifecycle(log, "user api stopped gracefully")
}

// ensureParentDir 日志文件、sqlite 文件所在目录不存在时创建
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}

// loggerOptions 行格式固定为 "时间 [LEVEL] 消息"，不插入 caller
func loggerOptions(c config.Log) logger.Options {
	return logger.Options{
		Level: c.Level,
		JSON:  c.JSON,
		Rotate: logger.FileRotate{
			Filename:   c.File,
			MaxSizeMB:  c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAgeDays: c.MaxAgeDays,
			Compress:   c.Compress,
		},
	}
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	if cfg.DB.Driver == "" || cfg.DB.Driver == "sqlite" {
		if err := ensureParentDir(cfg.DB.DSN); err != nil {
			l.Fatal("db dir", zap.Error(err))
		}
	}
	gormLog, err := logger.ToStdLogger(l, zapcore.WarnLevel)
	if err != nil {
		l.Fatal("gorm logger", zap.Error(err))
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             gormLog,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
