package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"banmaytinh/internal/domain"
	"banmaytinh/internal/repository"
	"banmaytinh/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionKeyPrefix  = "session:"
	minPasswordLength = 6
)

// AuthService 注册/登录/会话
type AuthService struct {
	userRepo   repository.UsersRepository
	kv         store.KV
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewAuthService(userRepo repository.UsersRepository, kv store.KV, sessionTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		kv:         kv,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register 用户名/邮箱重复返回 domain.ErrDuplicateName
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	// 1. 参数验证
	name, email, err := validateAccount(req.Name, req.Email, req.Password, req.ConfirmPassword, true)
	if err != nil {
		return nil, err
	}

	return s.createUser(ctx, name, email, req.Password, domain.RoleUser)
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	id, err := s.userRepo.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	u.UserID = id
	s.logger.Info("User registered", zap.Int64("user_id", id), zap.String("name", name), zap.String("role", string(role)))
	return u, nil
}

// validateAccount 规范化用户名/邮箱；requirePassword 为 false 时密码可留空（不修改）
func validateAccount(rawName, rawEmail, password, confirm string, requirePassword bool) (string, string, error) {
	name := strings.TrimSpace(rawName)
	email := strings.TrimSpace(strings.ToLower(rawEmail))
	if name == "" {
		return "", "", fmt.Errorf("name is required: %w", domain.ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", "", fmt.Errorf("email is invalid: %w", domain.ErrInvalidArgument)
	}
	if password == "" && confirm == "" && !requirePassword {
		return name, email, nil
	}
	if len(password) < minPasswordLength {
		return "", "", fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrInvalidArgument)
	}
	if password != confirm {
		return "", "", fmt.Errorf("passwords do not match: %w", domain.ErrInvalidArgument)
	}
	return name, email, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// EnsureAdmin 开发环境：管理员不存在时创建
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	_, err := s.userRepo.GetUserByLogin(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	_, err = s.createUser(ctx, name, email, password, domain.RoleAdmin)
	return err
}

// LoginRequest 登录请求；Login 可以是用户名或邮箱
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login 成功后返回新会话
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*domain.Session, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, fmt.Errorf("login and password are required: %w", domain.ErrInvalidArgument)
	}

	u, err := s.userRepo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("User login failed", zap.String("login", login), zap.String("reason", "user_not_found"))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("User login failed", zap.String("login", login), zap.String("reason", "wrong_password"))
		return nil, domain.ErrInvalidCredentials
	}

	sess := &domain.Session{
		Token:  uuid.NewString(),
		UserID: u.UserID,
		Name:   u.Name,
		Role:   u.Role,
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKeyPrefix+sess.Token, string(data), s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("User logged in", zap.Int64("user_id", u.UserID), zap.String("role", string(u.Role)))
	return sess, nil
}

// Session 按 token 读取会话；不存在或已过期返回 domain.ErrUnauthorized
func (s *AuthService) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	raw, err := s.kv.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Logout 删除会话（幂等）
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.kv.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Profile 个人信息
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}
