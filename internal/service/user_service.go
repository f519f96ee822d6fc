package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"user-service/internal/core/cache"
	"user-service/internal/domain"
)

// PasswordHasher 只需要派生编码这一能力
type PasswordHasher interface {
	Hash(pw string) (string, error)
}

type UserService struct {
	repo   domain.UserRepository
	hasher PasswordHasher
	cache  *cache.Cache
	ttl    time.Duration
	log    *zap.Logger
}

type Option func(*UserService)

// WithCache 按 id 读穿缓存；用户不可变，缓存不会过期失真
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *UserService) { s.cache, s.ttl = c, ttl }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *UserService) { s.log = l }
}

func NewUserService(repo domain.UserRepository, hasher PasswordHasher, opts ...Option) *UserService {
	s := &UserService{repo: repo, hasher: hasher, log: zap.NewNop(), ttl: time.Minute}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register 明文只在这里出现，入库前完成哈希
func (s *UserService) Register(ctx context.Context, username, email, password string) (int64, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		usersCreated.WithLabelValues("error").Inc()
		return 0, &domain.CryptoError{Err: err}
	}
	id, err := s.repo.Create(ctx, username, email, hashed)
	switch {
	case err == nil:
		usersCreated.WithLabelValues("ok").Inc()
		s.log.Debug("user created", zap.Int64("id", id))
	case domain.IsValidation(err):
		usersCreated.WithLabelValues("invalid").Inc()
	case domain.IsConflict(err):
		usersCreated.WithLabelValues("conflict").Inc()
		s.log.Warn("duplicate email on create")
	default:
		usersCreated.WithLabelValues("error").Inc()
		s.log.Error("create user failed", zap.Error(err))
	}
	return id, err
}

// Get 不存在时返回 (nil, nil)
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	if s.cache == nil {
		return s.repo.FindByID(ctx, id)
	}
	u, err := cache.GetOrLoadJSON(s.cache, ctx, fmt.Sprintf("user:%d", id), s.ttl,
		func(ctx context.Context) (*domain.User, error) {
			return s.repo.FindByID(ctx, id)
		})
	if err != nil {
		var se *domain.StorageError
		if !errors.As(err, &se) {
			s.log.Warn("user cache decode failed", zap.Error(err))
			return s.repo.FindByID(ctx, id)
		}
		s.log.Error("get user failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}
