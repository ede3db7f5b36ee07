package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"banmaytinh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOrderService_Checkout_NotifiesWebhook(t *testing.T) {
	events := make(chan OrderPlacedEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev OrderPlacedEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			events <- ev
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := newTestShop(t)
	s.orders = NewOrderService(s.store, NewWebhookNotifier(srv.URL, zap.NewNop()), zap.NewNop())
	ctx := context.Background()
	mouse := s.product(t, "Mouse", 200000, false, nil)

	_, err := s.orders.Checkout(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse, Quantity: 2})
	require.NoError(t, err)

	order, err := s.orders.Checkout(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 400000.0, order.TotalPrice)

	select {
	case ev := <-events:
		assert.Equal(t, "order.placed", ev.Event)
		assert.Equal(t, order.OrderID, ev.OrderID)
		assert.Equal(t, 1, ev.LineCount)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not called")
	}

	view, err := s.cart.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestOrderService_Checkout_WebhookFailureKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := newTestShop(t)
	s.orders = NewOrderService(s.store, NewWebhookNotifier(srv.URL, zap.NewNop()), zap.NewNop())
	ctx := context.Background()
	mouse := s.product(t, "Mouse", 100, false, nil)
	_, err := s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse})
	require.NoError(t, err)

	order, err := s.orders.Checkout(ctx, 1)
	require.NoError(t, err)
	_, err = s.orders.GetOrder(ctx, order.OrderID)
	assert.NoError(t, err)
}

type notifierFunc func(ctx context.Context, o *domain.Order) error

func (f notifierFunc) OrderPlaced(ctx context.Context, o *domain.Order) error { return f(ctx, o) }

func TestOrderService_Checkout_SlowWebhookDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	events := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	defer close(release)

	s := newTestShop(t)
	s.orders = NewOrderService(s.store, notifierFunc(func(ctx context.Context, o *domain.Order) error {
		err := NewWebhookNotifier(srv.URL, zap.NewNop()).OrderPlaced(ctx, o)
		events <- err
		return err
	}), zap.NewNop())
	s.orders.notifyTimeout = 100 * time.Millisecond

	// 请求已取消：通知照常在后台发送
	ctx, cancel := context.WithCancel(context.Background())
	mouse := s.product(t, "Mouse", 100, false, nil)
	_, err := s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse})
	require.NoError(t, err)
	cancel()

	start := time.Now()
	_, err = s.orders.Checkout(ctx, 1)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	select {
	case err := <-events:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("notification did not time out")
	}
}

func TestOrderService_UpdateStatusAndProfile(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	mouse := s.product(t, "Mouse", 100, false, nil)

	place := func() *domain.Order {
		_, err := s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse})
		require.NoError(t, err)
		o, err := s.orders.Checkout(ctx, 1)
		require.NoError(t, err)
		return o
	}
	first := place()
	second := place()

	assert.ErrorIs(t, s.orders.UpdateStatus(ctx, first.OrderID, "shipped"), domain.ErrInvalidStatus)
	assert.ErrorIs(t, s.orders.UpdateStatus(ctx, 9999, "completed"), domain.ErrNotFound)
	require.NoError(t, s.orders.UpdateStatus(ctx, second.OrderID, "cancelled"))

	stats, err := s.orders.ProfileStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.OrderCount)
	assert.Equal(t, 100.0, stats.TotalSpent)

	_, err = s.orders.GetUserOrder(ctx, 2, first.OrderID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cancelled, err := s.orders.ListOrders(ctx, ListOrdersRequest{Status: "cancelled"})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, second.OrderID, cancelled[0].OrderID)

	_, err = s.orders.ListOrders(ctx, ListOrdersRequest{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestOrderService_Statistics_FillsSixMonths(t *testing.T) {
	s := newTestShop(t)
	s.orders.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	mouse := s.product(t, "Mouse", 100, false, nil)

	for _, at := range []time.Time{
		time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	} {
		_, err := s.cart.AddProduct(ctx, 1, AddProductRequest{ProductID: mouse})
		require.NoError(t, err)
		o, err := s.orders.Checkout(ctx, 1)
		require.NoError(t, err)
		s.store.SetOrderCreatedAt(o.OrderID, at)
	}

	stats, err := s.orders.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 0, stats.ByStatus[domain.OrderStatusCompleted])
	assert.Len(t, stats.ByStatus, len(domain.OrderStatuses))
	assert.Equal(t, []domain.MonthlyCount{
		{Month: "2024-01", Count: 0},
		{Month: "2024-02", Count: 1},
		{Month: "2024-03", Count: 0},
		{Month: "2024-04", Count: 0},
		{Month: "2024-05", Count: 0},
		{Month: "2024-06", Count: 2},
	}, stats.MonthlyOrders)
}
