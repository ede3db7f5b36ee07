package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banmaytinh/internal/domain"
)

// PostgresUsersRepository 用户Repository实现
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `user_id, name, email, password_hash, role, is_deleted, created_at`

func scanUser(s rowScanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := s.Scan(&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsDeleted, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *PostgresUsersRepository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE (name = $1 OR email = $1) AND is_deleted = FALSE
		LIMIT 1
	`, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", login, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, u *domain.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id
	`, u.Name, u.Email, u.PasswordHash, string(u.Role)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("user %q: %w", u.Name, domain.ErrDuplicateName)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (r *PostgresUsersRepository) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = $1 AND is_deleted = FALSE
		ORDER BY user_id
	`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *PostgresUsersRepository) CountUsers(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE role = $1 AND is_deleted = FALSE
	`, string(role)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUsersRepository) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = $3, email = $4, password_hash = $5
		WHERE user_id = $1 AND role = $2 AND is_deleted = FALSE
	`, u.UserID, string(u.Role), u.Name, u.Email, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Name, domain.ErrDuplicateName)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(res, fmt.Errorf("user %d: %w", u.UserID, domain.ErrNotFound))
}

func (r *PostgresUsersRepository) SoftDeleteUser(ctx context.Context, userID int64, role domain.Role) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_deleted = TRUE
		WHERE user_id = $1 AND role = $2 AND is_deleted = FALSE
	`, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(res, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound))
}
