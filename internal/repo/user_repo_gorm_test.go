package repo

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user-service/internal/core/database"
	"user-service/internal/domain"
	"user-service/internal/feature/user"
)

func newSQLiteRepo(t *testing.T) (*UserRepo, *gorm.DB) {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "users.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	r := NewUserRepo(db)
	require.NoError(t, r.InitSchema(context.Background()))
	return r, db
}

func countUsers(t *testing.T, db *gorm.DB, email string) int64 {
	t.Helper()
	var n int64
	q := db.Model(&user.UserModel{})
	if email != "" {
		q = q.Where("email = ?", email)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestValidEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b_c@my-host.io", "X9@Y.ORG", "_@a.bc"}
	invalid := []string{
		"", "plainaddress", "a@b", "a@b.c", "a+b@example.com", "a@sub.example.com",
		" alice@example.com", "alice@example.com ", "alice@exa_mple.com", "alice@example.c0m",
		"@example.com", "alice@.com", "alice@@example.com",
	}
	for _, e := range valid {
		assert.True(t, ValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, ValidEmail(e), e)
	}
}

func TestCreateThenFindByID(t *testing.T) {
	r, db := newSQLiteRepo(t)
	ctx := context.Background()

	id, err := r.Create(ctx, "alice", "alice@example.com", "$argon2id$encoded")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	u, err := r.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())

	// 凭据落库，但读投影里没有
	var stored string
	require.NoError(t, db.Raw("SELECT password FROM users WHERE id = ?", id).Scan(&stored).Error)
	assert.Equal(t, "$argon2id$encoded", stored)
}

func TestCreate_IDsIncrease(t *testing.T) {
	r, _ := newSQLiteRepo(t)
	ctx := context.Background()

	first, err := r.Create(ctx, "a", "a@example.com", "h")
	require.NoError(t, err)
	second, err := r.Create(ctx, "b", "b@example.com", "h")
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestCreate_InvalidEmailInsertsNothing(t *testing.T) {
	r, db := newSQLiteRepo(t)
	for _, email := range []string{"not-an-email", "a@b.c", "a@sub.example.com", ""} {
		_, err := r.Create(context.Background(), "bob", email, "h")
		require.Error(t, err)
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve), email)
		assert.Contains(t, ve.Error(), "Invalid Email Format")
	}
	assert.Equal(t, int64(0), countUsers(t, db, ""))
}

func TestCreate_DuplicateEmailConflict(t *testing.T) {
	r, db := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "alice", "alice@example.com", "h1")
	require.NoError(t, err)
	_, err = r.Create(ctx, "alice2", "alice@example.com", "h2")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Equal(t, int64(1), countUsers(t, db, "alice@example.com"))
}

func TestCreate_ConcurrentDuplicateEmail(t *testing.T) {
	r, db := newSQLiteRepo(t)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(context.Background(), "racer", "race@example.com", "h")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, int64(1), countUsers(t, db, "race@example.com"))
}

func TestFindByID_Absent(t *testing.T) {
	r, _ := newSQLiteRepo(t)
	u, err := r.FindByID(context.Background(), 12345)
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestInitSchema_Idempotent(t *testing.T) {
	r, db := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "alice", "alice@example.com", "h")
	require.NoError(t, err)
	require.NoError(t, r.InitSchema(ctx))
	require.NoError(t, r.InitSchema(ctx))
	assert.Equal(t, int64(1), countUsers(t, db, ""))
}

// postgres 方言 + sqlmock：覆盖驱动错误翻译
func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewUserRepo(db), mock
}

func TestCreate_PostgresUniqueViolation(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "idx_users_email"`})

	_, err := r.Create(context.Background(), "alice", "alice@example.com", "h")
	assert.True(t, domain.IsConflict(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StorageFailure(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(errors.New("disk I/O error"))

	_, err := r.Create(context.Background(), "alice", "alice@example.com", "h")
	var se *domain.StorageError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Contains(t, se.Error(), "disk I/O error")
	assert.False(t, domain.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_InvalidEmailSkipsStorage(t *testing.T) {
	r, mock := newMockRepo(t)
	_, err := r.Create(context.Background(), "alice", "nope", "h")
	assert.True(t, domain.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_StorageFailure(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT .+ FROM "users"`).WillReturnError(errors.New("connection reset"))

	u, err := r.FindByID(context.Background(), 1)
	assert.Nil(t, u)
	var se *domain.StorageError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Contains(t, se.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NoRows(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT .+ FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "created_at"}))

	u, err := r.FindByID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}
