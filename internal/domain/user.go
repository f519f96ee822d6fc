package domain

import (
	"context"
	"time"
)

// User 对外投影（不含密码凭据）
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepository 用户存储。FindByID 查不到时返回 (nil, nil)
type UserRepository interface {
	InitSchema(ctx context.Context) error
	Create(ctx context.Context, username, email, passwordHash string) (int64, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}
