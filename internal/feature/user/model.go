package user

import (
	"time"

	"user-service/internal/domain"
)

// UserModel users 表行；Password 存编码后的凭据
type UserModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"size:255;not null"`
	Email     string    `gorm:"uniqueIndex;size:255;not null"`
	Password  string    `gorm:"column:password;size:255;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserModel) TableName() string { return "users" }

// PublicColumns 读路径投影，排除 password
var PublicColumns = []string{"id", "username", "email", "created_at"}

// SQLiteDDL 单文件库建表语句，AUTOINCREMENT 保证 id 不复用
const SQLiteDDL = `CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}
