package repository

import (
	"context"
	"testing"
	"time"

	"banmaytinh/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCarts_AddCartLine_Upsert(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCartsRepository(db)

	cfg := `{"pc_name":"PC"}`
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO carts`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(3))
	mock.ExpectQuery(`ON CONFLICT \(cart_id, product_id, config_hash\)`).
		WithArgs(int64(3), int64(100), 1, 15000000.0, cfg, "abc").
		WillReturnRows(sqlmock.NewRows([]string{"cart_line_id", "quantity"}).AddRow(9, 2))
	mock.ExpectCommit()

	line, err := repo.AddCartLine(context.Background(), 7, domain.CartLine{
		ProductID:  100,
		Quantity:   1,
		Price:      15000000,
		ConfigData: &cfg,
		ConfigHash: "abc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), line.CartLineID)
	assert.Equal(t, int64(3), line.CartID)
	assert.Equal(t, 2, line.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCarts_GetCart_None(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCartsRepository(db)

	mock.ExpectQuery(`SELECT cart_id, created_at FROM carts WHERE user_id`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id", "created_at"}))

	cart, err := repo.GetCart(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.CartID)
	assert.Empty(t, cart.Lines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCarts_DeleteCartLine_OtherUsersLine(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresCartsRepository(db)

	mock.ExpectExec(`DELETE FROM cart_lines cl`).
		WithArgs(int64(7), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteCartLine(context.Background(), 7, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_Checkout(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOrdersRepository(db)

	cfg := `{"pc_name":"PC","config_name":"PC (Core i5)"}`
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT cart_id FROM carts WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(3))
	mock.ExpectQuery(`FROM cart_lines WHERE cart_id`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price", "config_data", "config_hash"}).
			AddRow(100, 2, 14000000.0, cfg, "fp").
			AddRow(201, 1, 500000.0, nil, ""))
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(int64(7), 28500000.0, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "created_at"}).AddRow(50, created))
	mock.ExpectQuery(`INSERT INTO order_lines`).
		WithArgs(int64(50), int64(100), 2, 14000000.0, cfg, "fp").
		WillReturnRows(sqlmock.NewRows([]string{"order_line_id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO order_lines`).
		WithArgs(int64(50), int64(201), 1, 500000.0, nil, "").
		WillReturnRows(sqlmock.NewRows([]string{"order_line_id"}).AddRow(2))
	mock.ExpectExec(`DELETE FROM cart_lines WHERE cart_id`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM carts WHERE cart_id`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := repo.Checkout(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(50), order.OrderID)
	assert.Equal(t, 28500000.0, order.TotalPrice)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Lines, 2)
	require.NotNil(t, order.Lines[0].ConfigData)
	assert.Equal(t, cfg, *order.Lines[0].ConfigData)
	assert.Nil(t, order.Lines[1].ConfigData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_Checkout_EmptyCart(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOrdersRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT cart_id FROM carts`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(3))
	mock.ExpectQuery(`FROM cart_lines WHERE cart_id`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price", "config_data", "config_hash"}))
	mock.ExpectRollback()

	_, err := repo.Checkout(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_GetOrderStatistics(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOrdersRepository(db)

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT status, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "sum"}).
			AddRow("pending", 2, 300.0).
			AddRow("completed", 3, 900.0))
	mock.ExpectQuery(`to_char\(date_trunc\('month', created_at\), 'YYYY-MM'\)`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"month", "count"}).
			AddRow("2024-02", 1).
			AddRow("2024-04", 4))

	stats, err := repo.GetOrderStatistics(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalOrders)
	assert.Equal(t, 3, stats.ByStatus[domain.OrderStatusCompleted])
	assert.Equal(t, 900.0, stats.Revenue)
	assert.Equal(t, []domain.MonthlyCount{{Month: "2024-02", Count: 1}, {Month: "2024-04", Count: 4}}, stats.MonthlyOrders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOrders_UpdateOrderStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresOrdersRepository(db)

	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs(int64(50), "completed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateOrderStatus(context.Background(), 50, domain.OrderStatusCompleted))
	assert.NoError(t, mock.ExpectationsWereMet())
}
