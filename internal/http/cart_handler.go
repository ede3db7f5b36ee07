package httpapi

import (
	"context"
	"net/http"

	"banmaytinh/internal/service"

	"go.uber.org/zap"
)

// CartHandler 购物车 Handler（需登录）
type CartHandler struct {
	cartService *service.CartService
	logger      *zap.Logger
}

func NewCartHandler(cartService *service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, logger: logger}
}

// ServeHTTP /api/v1/cart/...
func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	seg := pathSegments(r.URL.Path, "/api/v1/cart")
	switch {
	case len(seg) == 0 && r.Method == http.MethodGet:
		h.GetCart(w, r, sess.UserID)
	case len(seg) == 1 && seg[0] == "items" && r.Method == http.MethodPost:
		h.AddProduct(w, r, sess.UserID)
	case len(seg) == 1 && seg[0] == "pc" && r.Method == http.MethodPost:
		h.AddConfiguredPC(w, r, sess.UserID)
	case len(seg) == 3 && seg[0] == "lines" && seg[2] == "increase" && r.Method == http.MethodPost:
		h.changeLine(w, r, sess.UserID, seg[1], h.cartService.IncreaseLine)
	case len(seg) == 3 && seg[0] == "lines" && seg[2] == "decrease" && r.Method == http.MethodPost:
		h.changeLine(w, r, sess.UserID, seg[1], h.cartService.DecreaseLine)
	case len(seg) == 2 && seg[0] == "lines" && r.Method == http.MethodDelete:
		h.changeLine(w, r, sess.UserID, seg[1], h.cartService.RemoveLine)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request, userID int64) {
	view, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, "GetCart", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request, userID int64) {
	var payload service.AddProductRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}
	line, err := h.cartService.AddProduct(r.Context(), userID, payload)
	if err != nil {
		writeError(w, h.logger, "AddProduct", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(line))
}

// AddConfiguredPC 选择不合法返回 400
func (h *CartHandler) AddConfiguredPC(w http.ResponseWriter, r *http.Request, userID int64) {
	// 1. 参数解析和验证
	var payload service.AddConfiguredPCRequest
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}

	// 2. 调用 Service
	line, cfg, err := h.cartService.AddConfiguredPC(r.Context(), userID, payload)
	if err != nil {
		writeError(w, h.logger, "AddConfiguredPC", err)
		return
	}

	// 3. 返回响应
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"line":          line,
		"configuration": cfg,
	}))
}

func (h *CartHandler) changeLine(w http.ResponseWriter, r *http.Request, userID int64, rawLineID string, op func(ctx context.Context, userID, lineID int64) error) {
	lineID, ok := parseID(rawLineID)
	if !ok {
		writeBadRequest(w, "invalid cart line id")
		return
	}
	if err := op(r.Context(), userID, lineID); err != nil {
		writeError(w, h.logger, "ChangeCartLine", err)
		return
	}
	h.GetCart(w, r, userID)
}
