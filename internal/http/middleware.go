package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"banmaytinh/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

// SessionFromContext Guard 写入的当前会话
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey).(*domain.Session)
	return sess, ok
}

// sessionToken 读取 "Authorization: Bearer <token>"，兼容 X-Session-Token
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}

// SessionLookup 按 token 读取会话（由 AuthService 实现）
type SessionLookup interface {
	Session(ctx context.Context, token string) (*domain.Session, error)
}

// Guard 登录/管理员权限检查，按路由组套用
type Guard struct {
	sessions SessionLookup
	logger   *zap.Logger
}

func NewGuard(sessions SessionLookup, logger *zap.Logger) *Guard {
	return &Guard{sessions: sessions, logger: logger}
}

// RequireSession 未登录返回 401
func (g *Guard) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := g.sessions.Session(r.Context(), sessionToken(r))
		if err != nil {
			writeError(w, g.logger, "Session lookup", err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sess)))
	}
}

// RequireAdmin 未登录返回 401，非管理员返回 403
func (g *Guard) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return g.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		if sess.Role != domain.RoleAdmin {
			g.logger.Warn("Admin route denied", zap.Int64("user_id", sess.UserID), zap.String("path", r.URL.Path))
			writeError(w, g.logger, "Admin check", domain.ErrForbidden)
			return
		}
		next(w, r)
	})
}

// RateLimiter 按客户端地址限流
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	logger   *zap.Logger
}

func NewRateLimiter(requestsPerSecond, burst int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[key]
	if !ok {
		// 简单上限，防止 map 无限增长
		if len(rl.limiters) > 10000 {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limit 超限返回 429
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !rl.getLimiter(key).Allow() {
			rl.logger.Warn("Rate limit exceeded", zap.String("key", key), zap.String("path", r.URL.Path))
			writeJSON(w, http.StatusTooManyRequests, Fail("too many requests"))
			return
		}
		next(w, r)
	}
}

type loggingRecorder struct {
	http.ResponseWriter
	status int
}

func (r *loggingRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger 访问日志
func RequestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &loggingRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", clientKey(r)),
		)
	})
}

// methodNotAllowed 与 ServeMux 保持一致的空响应
func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}
