package repository

import (
	"context"
	"time"

	"banmaytinh/internal/domain"
)

// OrdersFilter 后台订单列表过滤
type OrdersFilter struct {
	Status domain.OrderStatus // 空 = 全部
}

// OrdersRepository 订单
type OrdersRepository interface {
	// Checkout 单事务：购物车行复制为订单行（config_data 原样复制），删除购物车
	// 购物车为空返回 domain.ErrEmptyCart
	Checkout(ctx context.Context, userID int64) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	// ListOrders 后台列表，新订单在前，不含已删除用户的订单
	ListOrders(ctx context.Context, filter OrdersFilter) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	// GetOrderStatistics MonthlyOrders 只包含 since 之后有订单的月份
	GetOrderStatistics(ctx context.Context, since time.Time) (*domain.OrderStatistics, error)
}
