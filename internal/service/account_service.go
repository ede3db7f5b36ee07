package service

import (
	"context"
	"fmt"

	"banmaytinh/internal/domain"
	"banmaytinh/internal/repository"

	"go.uber.org/zap"
)

// AccountService 后台账号管理：普通用户与管理员共用，按 role 区分
type AccountService struct {
	userRepo  repository.UsersRepository
	orderRepo repository.OrdersRepository
	logger    *zap.Logger
}

func NewAccountService(userRepo repository.UsersRepository, orderRepo repository.OrdersRepository, logger *zap.Logger) *AccountService {
	return &AccountService{userRepo: userRepo, orderRepo: orderRepo, logger: logger}
}

// AccountRequest 创建/修改账号；修改时密码留空表示不变
type AccountRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *AccountService) ListAccounts(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := s.userRepo.ListUsers(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return users, nil
}

// account 未删除且角色匹配的账号，否则 domain.ErrNotFound
func (s *AccountService) account(ctx context.Context, role domain.Role, userID int64) (*domain.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted || u.Role != role {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return u, nil
}

func (s *AccountService) GetAccount(ctx context.Context, role domain.Role, userID int64) (*domain.User, error) {
	return s.account(ctx, role, userID)
}

// CreateAccount 用户名/邮箱重复返回 domain.ErrDuplicateName
func (s *AccountService) CreateAccount(ctx context.Context, role domain.Role, req AccountRequest) (*domain.User, error) {
	name, email, err := validateAccount(req.Name, req.Email, req.Password, req.ConfirmPassword, true)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	id, err := s.userRepo.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	u.UserID = id
	s.logger.Info("Account created", zap.Int64("user_id", id), zap.String("role", string(role)))
	return u, nil
}

// UpdateAccount 管理员不能修改自己的账号（domain.ErrForbidden）
func (s *AccountService) UpdateAccount(ctx context.Context, actorID int64, role domain.Role, userID int64, req AccountRequest) (*domain.User, error) {
	if role == domain.RoleAdmin && actorID == userID {
		return nil, fmt.Errorf("cannot edit your own admin account: %w", domain.ErrForbidden)
	}
	name, email, err := validateAccount(req.Name, req.Email, req.Password, req.ConfirmPassword, false)
	if err != nil {
		return nil, err
	}
	u, err := s.account(ctx, role, userID)
	if err != nil {
		return nil, err
	}

	u.Name = name
	u.Email = email
	if req.Password != "" {
		if u.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("Account updated", zap.Int64("user_id", userID), zap.Int64("actor_id", actorID))
	return u, nil
}

// DeleteAccount 软删除；管理员不能删除自己，也不能删除最后一个管理员
func (s *AccountService) DeleteAccount(ctx context.Context, actorID int64, role domain.Role, userID int64) error {
	if role == domain.RoleAdmin {
		if actorID == userID {
			return fmt.Errorf("cannot delete your own admin account: %w", domain.ErrForbidden)
		}
		n, err := s.userRepo.CountUsers(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if n <= 1 {
			return fmt.Errorf("cannot delete the last admin: %w", domain.ErrForbidden)
		}
	}
	if err := s.userRepo.SoftDeleteUser(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info("Account deleted", zap.Int64("user_id", userID), zap.String("role", string(role)), zap.Int64("actor_id", actorID))
	return nil
}

// UserOrders 某个普通用户的订单（新的在前）
func (s *AccountService) UserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	if _, err := s.account(ctx, domain.RoleUser, userID); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}
