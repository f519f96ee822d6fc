package repo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"user-service/internal/domain"
	"user-service/internal/feature/user"
)

// MsgInvalidEmail 邮箱格式错误提示
const MsgInvalidEmail = "Invalid Email Format! Required email format: *@*.*"

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._]+@[A-Za-z0-9-]+\.[A-Za-z]{2,}$`)

// ValidEmail local@domain.tld，TLD 至少两位字母
func ValidEmail(email string) bool { return emailRe.MatchString(email) }

type UserRepo struct{ db *gorm.DB }

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// InitSchema 幂等建表，不会破坏已有数据
func (r *UserRepo) InitSchema(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	var err error
	if db.Dialector.Name() == "sqlite" {
		err = db.Exec(user.SQLiteDDL).Error
	} else {
		err = db.AutoMigrate(&user.UserModel{})
	}
	if err != nil {
		return &domain.StorageError{Op: "init schema", Err: err}
	}
	return nil
}

// Create 先校验邮箱再写库；唯一性交给数据库约束，不做先查后插
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (int64, error) {
	if !ValidEmail(email) {
		return 0, domain.NewValidationError(MsgInvalidEmail)
	}
	m := user.UserModel{Username: username, Email: email, Password: passwordHash}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err) {
			return 0, &domain.ConflictError{Field: "email", Err: domain.ErrEmailTaken}
		}
		return 0, &domain.StorageError{Op: "insert user", Err: err}
	}
	return m.ID, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).
		Select(user.PublicColumns).
		Take(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get user", Err: err}
	}
	return m.ToDomain(), nil
}

// 驱动未翻译错误时的兜底
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
