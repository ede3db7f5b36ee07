package service

import (
	"context"
	"testing"

	"banmaytinh/internal/buildconfig"
	"banmaytinh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddProduct_StockAndMerge(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	mouse := s.product(t, "Mouse", 200000, false, nil) // stock 5

	first, err := s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse, Quantity: 2})
	require.NoError(t, err)
	again, err := s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, first.CartLineID, again.CartLineID)
	assert.Equal(t, 5, again.Quantity)

	_, err = s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: 9999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	view, err := s.cart.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, view.Total)
}

func TestCartService_AddConfiguredPC(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	pc := s.product(t, "PC Gaming", 15000000, true, nil)
	i5 := s.product(t, "Core i5", 4000000, false, nil)
	i7 := s.product(t, "Core i7", 7000000, false, nil)
	ram := s.product(t, "RAM 16GB", 1000000, false, nil)
	cpuGroup := s.group(t, "CPU", i5, i7)
	ramGroup := s.group(t, "RAM", ram)

	line, cfg, err := s.cart.AddConfiguredPC(ctx, 1, AddConfiguredPCRequest{
		PCID: pc,
		Selections: []buildconfig.Selection{
			{GroupID: cpuGroup, ProductID: i5},
			{GroupID: ramGroup, ProductID: ram},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PC Gaming (Core i5, RAM 16GB)", cfg.ConfigName)
	assert.Equal(t, 20000000.0, cfg.UnitPrice)
	assert.Equal(t, 20000000.0, line.Price)
	assert.Equal(t, cfg.Fingerprint(), line.ConfigHash)

	// 同样的选择，顺序不同：合并为同一行
	same, _, err := s.cart.AddConfiguredPC(ctx, 1, AddConfiguredPCRequest{
		PCID: pc,
		Selections: []buildconfig.Selection{
			{GroupID: ramGroup, ProductID: ram},
			{GroupID: cpuGroup, ProductID: i5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, line.CartLineID, same.CartLineID)
	assert.Equal(t, 2, same.Quantity)

	// 不同选择：新行
	other, _, err := s.cart.AddConfiguredPC(ctx, 1, AddConfiguredPCRequest{
		PCID:       pc,
		Selections: []buildconfig.Selection{{GroupID: cpuGroup, ProductID: i7}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, line.CartLineID, other.CartLineID)

	view, err := s.cart.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	stored, err := buildconfig.Unmarshal(*view.Lines[0].ConfigData)
	require.NoError(t, err)
	assert.Equal(t, "PC Gaming (Core i5, RAM 16GB)", stored.ConfigName)
}

func TestCartService_AddConfiguredPC_Invalid(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	pc := s.product(t, "PC Gaming", 15000000, true, nil)
	i5 := s.product(t, "Core i5", 4000000, false, nil)
	ram := s.product(t, "RAM 16GB", 1000000, false, nil)
	cpuGroup := s.group(t, "CPU", i5)

	_, _, err := s.cart.AddConfiguredPC(ctx, 1, AddConfiguredPCRequest{
		PCID:       pc,
		Selections: []buildconfig.Selection{{GroupID: cpuGroup, ProductID: ram}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	_, _, err = s.cart.AddConfiguredPC(ctx, 1, AddConfiguredPCRequest{PCID: i5})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	view, err := s.cart.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCartService_IncreaseDecrease(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	mouse := s.product(t, "Mouse", 100, false, nil)

	line, err := s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse})
	require.NoError(t, err)

	require.NoError(t, s.cart.IncreaseLine(ctx, 1, line.CartLineID))
	got, err := s.store.GetCartLine(ctx, 1, line.CartLineID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	require.NoError(t, s.cart.DecreaseLine(ctx, 1, line.CartLineID))
	require.NoError(t, s.cart.DecreaseLine(ctx, 1, line.CartLineID))
	_, err = s.store.GetCartLine(ctx, 1, line.CartLineID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// 其他用户的行不可操作
	line, err = s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse})
	require.NoError(t, err)
	assert.ErrorIs(t, s.cart.RemoveLine(ctx, 2, line.CartLineID), domain.ErrNotFound)
}

func TestCartService_IncreaseLine_RespectsStock(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	mouse := s.product(t, "Mouse", 100, false, nil) // stock 5

	line, err := s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse, Quantity: 4})
	require.NoError(t, err)
	require.NoError(t, s.cart.IncreaseLine(ctx, 1, line.CartLineID))
	assert.ErrorIs(t, s.cart.IncreaseLine(ctx, 1, line.CartLineID), domain.ErrInsufficientStock)

	got, err := s.store.GetCartLine(ctx, 1, line.CartLineID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}
