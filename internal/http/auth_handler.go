package httpapi

import (
	"net/http"

	"banmaytinh/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 注册/登录/登出
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Register POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var payload service.RegisterRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}
	user, err := h.authService.Register(r.Context(), payload)
	if err != nil {
		writeError(w, h.logger, "Register", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(user))
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	// 1. 参数解析和验证
	var payload service.LoginRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}

	// 2. 调用 Service
	sess, err := h.authService.Login(r.Context(), payload)
	if err != nil {
		writeError(w, h.logger, "Login", err)
		return
	}

	// 3. 返回响应
	writeJSON(w, http.StatusOK, Ok(sess))
}

// Logout POST /api/v1/auth/logout（幂等）
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := h.authService.Logout(r.Context(), sessionToken(r)); err != nil {
		writeError(w, h.logger, "Logout", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
