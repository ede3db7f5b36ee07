package httpapi

import (
	"net/http"
	"time"

	"banmaytinh/internal/domain"
	"banmaytinh/internal/service"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// OrderHandler 下单/订单 Handler
type OrderHandler struct {
	orderService *service.OrderService
	authService  *service.AuthService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, authService *service.AuthService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, authService: authService, logger: logger}
}

// OrderView 订单详情（行名称已解析配置名）
type OrderView struct {
	domain.Order
	Lines []OrderLineView `json:"lines"`
}

// OrderLineView 订单行
type OrderLineView struct {
	domain.OrderLine
	DisplayName string  `json:"display_name"`
	Subtotal    float64 `json:"subtotal"`
}

func toOrderView(o *domain.Order) OrderView {
	v := OrderView{Order: *o, Lines: make([]OrderLineView, 0, len(o.Lines))}
	for _, l := range o.Lines {
		v.Lines = append(v.Lines, OrderLineView{
			OrderLine:   l,
			DisplayName: orderLineName(l),
			Subtotal:    l.Price * float64(l.Quantity),
		})
	}
	return v
}

// Checkout POST /api/v1/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	sess, _ := SessionFromContext(r.Context())
	order, err := h.orderService.Checkout(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.logger, "Checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(toOrderView(order)))
}

// UserOrders GET /api/v1/orders, GET /api/v1/orders/{id}
func (h *OrderHandler) UserOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess, _ := SessionFromContext(r.Context())
	seg := pathSegments(r.URL.Path, "/api/v1/orders")
	switch len(seg) {
	case 0:
		orders, err := h.orderService.ListUserOrders(r.Context(), sess.UserID)
		if err != nil {
			writeError(w, h.logger, "ListUserOrders", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(orders))
	case 1:
		orderID, ok := parseID(seg[0])
		if !ok {
			writeBadRequest(w, "invalid order id")
			return
		}
		o, err := h.orderService.GetUserOrder(r.Context(), sess.UserID, orderID)
		if err != nil {
			writeError(w, h.logger, "GetUserOrder", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(toOrderView(o)))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Profile GET /api/v1/profile
func (h *OrderHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess, _ := SessionFromContext(r.Context())
	user, err := h.authService.Profile(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.logger, "Profile", err)
		return
	}
	stats, err := h.orderService.ProfileStats(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.logger, "ProfileStats", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"user":  user,
		"stats": stats,
	}))
}

// ServeAdmin /admin/api/v1/orders/...
func (h *OrderHandler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	seg := pathSegments(r.URL.Path, "/admin/api/v1/orders")
	switch {
	case len(seg) == 0 && r.Method == http.MethodGet:
		h.ListOrders(w, r)
	case len(seg) == 1 && seg[0] == "statistics" && r.Method == http.MethodGet:
		h.Statistics(w, r)
	case len(seg) == 1 && seg[0] == "export" && r.Method == http.MethodGet:
		h.Export(w, r)
	case len(seg) == 1 && r.Method == http.MethodGet:
		h.GetOrder(w, r, seg[0])
	case len(seg) == 2 && seg[1] == "status" && r.Method == http.MethodPut:
		h.UpdateStatus(w, r, seg[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context(), service.ListOrdersRequest{Status: r.URL.Query().Get("status")})
	if err != nil {
		writeError(w, h.logger, "ListOrders", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(orders))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request, rawID string) {
	orderID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid order id")
		return
	}
	o, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, h.logger, "GetOrder", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toOrderView(o)))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, rawID string) {
	orderID, ok := parseID(rawID)
	if !ok {
		writeBadRequest(w, "invalid order id")
		return
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeBadRequest(w, "invalid body")
		return
	}
	if err := h.orderService.UpdateStatus(r.Context(), orderID, payload.Status); err != nil {
		writeError(w, h.logger, "UpdateOrderStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func (h *OrderHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orderService.Statistics(r.Context())
	if err != nil {
		writeError(w, h.logger, "OrderStatistics", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

// Export 导出 xlsx（支持 status 过滤）
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context(), service.ListOrdersRequest{Status: r.URL.Query().Get("status")})
	if err != nil {
		writeError(w, h.logger, "ExportOrders", err)
		return
	}
	data, err := GenerateOrderExport(orders)
	if err != nil {
		writeError(w, h.logger, "GenerateOrderExport", err)
		return
	}

	filename := "orders_" + time.Now().Format("20060102_150405") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
