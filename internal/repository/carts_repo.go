package repository

import (
	"context"

	"banmaytinh/internal/domain"
)

// CartsRepository 购物车；所有行操作均限定在 userID 的购物车内
type CartsRepository interface {
	// GetCart 用户购物车（含行）；无购物车时返回空车（CartID=0）
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	// AddCartLine 按 (product_id, config_hash) 合并：已存在则数量累加，否则新建行
	AddCartLine(ctx context.Context, userID int64, line domain.CartLine) (*domain.CartLine, error)
	GetCartLine(ctx context.Context, userID, lineID int64) (*domain.CartLine, error)
	SetCartLineQuantity(ctx context.Context, userID, lineID int64, quantity int) error
	DeleteCartLine(ctx context.Context, userID, lineID int64) error
}
