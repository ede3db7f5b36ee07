package service

import (
	"context"
	"fmt"
	"time"

	"banmaytinh/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OrderNotifier 下单成功后的外部通知（事务提交之后调用）
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
}

// OrderPlacedEvent webhook 推送内容
type OrderPlacedEvent struct {
	Event      string    `json:"event"`
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	LineCount  int       `json:"line_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// WebhookNotifier 通过 HTTP POST 推送订单事件
type WebhookNotifier struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewWebhookNotifier 创建 webhook 通知器
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(1*time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{httpClient: client, url: url, logger: logger}
}

func (n *WebhookNotifier) OrderPlaced(ctx context.Context, order *domain.Order) error {
	event := OrderPlacedEvent{
		Event:      "order.placed",
		OrderID:    order.OrderID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status),
		LineCount:  len(order.Lines),
		CreatedAt:  order.CreatedAt,
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to call order webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("order webhook returned status %d", resp.StatusCode())
	}

	n.logger.Debug("Order webhook delivered", zap.Int64("order_id", order.OrderID), zap.Int("status_code", resp.StatusCode()))
	return nil
}

// NopNotifier 未配置 webhook 时使用
type NopNotifier struct{}

func (NopNotifier) OrderPlaced(context.Context, *domain.Order) error { return nil }
