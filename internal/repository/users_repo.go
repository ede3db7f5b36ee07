package repository

import (
	"context"

	"banmaytinh/internal/domain"
)

// UsersRepository 用户
type UsersRepository interface {
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
	// GetUserByLogin 按用户名或邮箱查找（不含已删除用户）
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	// CreateUser 用户名或邮箱重复返回 domain.ErrDuplicateName
	CreateUser(ctx context.Context, u *domain.User) (int64, error)

	// ListUsers 指定角色的未删除用户，按 user_id 排序
	ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error)
	// CountUsers 指定角色的未删除用户数
	CountUsers(ctx context.Context, role domain.Role) (int, error)
	// UpdateUser 按 UserID + Role 更新 name/email/password_hash；已删除或不存在返回 domain.ErrNotFound
	UpdateUser(ctx context.Context, u *domain.User) error
	// SoftDeleteUser 标记 is_deleted；已删除或角色不符返回 domain.ErrNotFound
	SoftDeleteUser(ctx context.Context, userID int64, role domain.Role) error
}
