package repository

import (
	"context"
	"testing"
	"time"

	"banmaytinh/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUsers_GetUserByLogin(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresUsersRepository(db)

	mock.ExpectQuery(`WHERE \(name = \$1 OR email = \$1\) AND is_deleted = FALSE`).
		WithArgs("an@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "email", "password_hash", "role", "is_deleted", "created_at"}).
			AddRow(4, "an", "an@example.com", "hash", "admin", false, time.Now()))

	u, err := repo.GetUserByLogin(context.Background(), "an@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(4), u.UserID)
	assert.True(t, u.IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_CreateUser_Duplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresUsersRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("an", "an@example.com", "hash", "user").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateUser(context.Background(), &domain.User{Name: "an", Email: "an@example.com", PasswordHash: "hash", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_SoftDeleteUser(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresUsersRepository(db)

	mock.ExpectExec(`UPDATE users SET is_deleted = TRUE`).
		WithArgs(int64(4), "user").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET is_deleted = TRUE`).
		WithArgs(int64(4), "user").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SoftDeleteUser(context.Background(), 4, domain.RoleUser))
	err := repo.SoftDeleteUser(context.Background(), 4, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsers_UpdateUserAndCount(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresUsersRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET name = \$3, email = \$4, password_hash = \$5`).
		WithArgs(int64(4), "admin", "boss", "boss@example.com", "hash").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1 AND is_deleted = FALSE`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	err := repo.UpdateUser(ctx, &domain.User{UserID: 4, Role: domain.RoleAdmin, Name: "boss", Email: "boss@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	n, err := repo.CountUsers(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
