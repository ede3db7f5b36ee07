package service

import (
	"context"
	"fmt"
	"time"

	"banmaytinh/internal/domain"
	"banmaytinh/internal/metrics"
	"banmaytinh/internal/repository"

	"go.uber.org/zap"
)

const (
	// statisticsMonths 订单统计覆盖的月份数（含当月）
	statisticsMonths = 6
	// notifyTimeout 下单通知的最长等待时间，与请求生命周期无关
	notifyTimeout = 3 * time.Second
)

// OrderService 下单与订单管理
type OrderService struct {
	orderRepo     repository.OrdersRepository
	notifier      OrderNotifier
	notifyTimeout time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

func NewOrderService(orderRepo repository.OrdersRepository, notifier OrderNotifier, logger *zap.Logger) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{
		orderRepo:     orderRepo,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
		logger:        logger,
	}
}

// Checkout 货到付款下单；购物车为空返回 domain.ErrEmptyCart
func (s *OrderService) Checkout(ctx context.Context, userID int64) (*domain.Order, error) {
	order, err := s.orderRepo.Checkout(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics.RecordOrderPlaced()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.OrderID),
		zap.Int64("user_id", userID),
		zap.Float64("total_price", order.TotalPrice),
		zap.Int("lines", len(order.Lines)),
	)

	// 通知在后台发送，失败不影响已提交的订单
	go s.notify(context.WithoutCancel(ctx), order)
	return order, nil
}

func (s *OrderService) notify(ctx context.Context, order *domain.Order) {
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		s.logger.Warn("Order notification failed", zap.Int64("order_id", order.OrderID), zap.Error(err))
	}
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// GetUserOrder 只能查看自己的订单
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	o, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	return o, nil
}

// ProfileStats 个人中心订单汇总
type ProfileStats struct {
	OrderCount int     `json:"order_count"`
	TotalSpent float64 `json:"total_spent"` // 不含已取消订单
}

func (s *OrderService) ProfileStats(ctx context.Context, userID int64) (*ProfileStats, error) {
	orders, err := s.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &ProfileStats{OrderCount: len(orders)}
	for _, o := range orders {
		if o.Status != domain.OrderStatusCancelled {
			stats.TotalSpent += o.TotalPrice
		}
	}
	return stats, nil
}

// ListOrdersRequest 后台订单列表
type ListOrdersRequest struct {
	Status string
}

func (s *OrderService) ListOrders(ctx context.Context, req ListOrdersRequest) ([]domain.Order, error) {
	filter := repository.OrdersFilter{}
	if req.Status != "" {
		status := domain.OrderStatus(req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("status %q: %w", req.Status, domain.ErrInvalidStatus)
		}
		filter.Status = status
	}
	orders, err := s.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orderRepo.GetOrder(ctx, orderID)
}

// UpdateStatus 状态必须是 pending/processing/completed/cancelled 之一
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	st := domain.OrderStatus(status)
	if !st.Valid() {
		return fmt.Errorf("status %q: %w", status, domain.ErrInvalidStatus)
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, st); err != nil {
		return err
	}
	s.logger.Info("Order status updated", zap.Int64("order_id", orderID), zap.String("status", status))
	return nil
}

// Statistics 按状态计数、已完成订单收入、最近 6 个月订单数（无订单的月份补 0）
func (s *OrderService) Statistics(ctx context.Context) (*domain.OrderStatistics, error) {
	now := s.now()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(statisticsMonths - 1), 0)

	stats, err := s.orderRepo.GetOrderStatistics(ctx, firstMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to get order statistics: %w", err)
	}
	for _, st := range domain.OrderStatuses {
		if _, ok := stats.ByStatus[st]; !ok {
			stats.ByStatus[st] = 0
		}
	}

	counts := make(map[string]int, len(stats.MonthlyOrders))
	for _, mc := range stats.MonthlyOrders {
		counts[mc.Month] = mc.Count
	}
	series := make([]domain.MonthlyCount, 0, statisticsMonths)
	for i := 0; i < statisticsMonths; i++ {
		month := firstMonth.AddDate(0, i, 0).Format("2006-01")
		series = append(series, domain.MonthlyCount{Month: month, Count: counts[month]})
	}
	stats.MonthlyOrders = series
	return stats, nil
}
