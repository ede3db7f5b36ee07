package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"banmaytinh/internal/domain"
)

// PostgresOrdersRepository 订单Repository实现
type PostgresOrdersRepository struct {
	db *sql.DB
}

func NewPostgresOrdersRepository(db *sql.DB) *PostgresOrdersRepository {
	return &PostgresOrdersRepository{db: db}
}

var _ OrdersRepository = (*PostgresOrdersRepository)(nil)

const orderColumns = `o.order_id, o.user_id, u.name, o.total_price, o.status, o.created_at`

func scanOrder(s rowScanner) (domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := s.Scan(&o.OrderID, &o.UserID, &o.UserName, &o.TotalPrice, &status, &o.CreatedAt)
	o.Status = domain.OrderStatus(status)
	return o, err
}

func (r *PostgresOrdersRepository) Checkout(ctx context.Context, userID int64) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. 锁定购物车
	var cartID int64
	err = tx.QueryRowContext(ctx, `SELECT cart_id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmptyCart
		}
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	// 2. 读取购物车行（先读完再执行后续语句）
	rows, err := tx.QueryContext(ctx, `
		SELECT product_id, quantity, price, config_data, config_hash
		FROM cart_lines WHERE cart_id = $1 ORDER BY cart_line_id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}
	var lines []domain.OrderLine
	var total float64
	for rows.Next() {
		var (
			l          domain.OrderLine
			configData sql.NullString
		)
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.Price, &configData, &l.ConfigHash); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		l.ConfigData = nullStringPtr(configData)
		total += l.Price * float64(l.Quantity)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// 3. 创建订单与订单行
	order := &domain.Order{UserID: userID, TotalPrice: total, Status: domain.OrderStatusPending}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, total_price, status) VALUES ($1, $2, $3)
		RETURNING order_id, created_at
	`, userID, total, string(domain.OrderStatusPending)).Scan(&order.OrderID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range lines {
		l := &lines[i]
		l.OrderID = order.OrderID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, price, config_data, config_hash)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING order_line_id
		`, order.OrderID, l.ProductID, l.Quantity, l.Price, l.ConfigData, l.ConfigHash).Scan(&l.OrderLineID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order line: %w", err)
		}
	}

	// 4. 清空购物车
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("failed to clear cart lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE cart_id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}
	order.Lines = lines
	return order, nil
}

func (r *PostgresOrdersRepository) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN users u ON u.user_id = o.user_id
		WHERE o.order_id = $1
	`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ol.order_line_id, ol.order_id, ol.product_id, p.name, ol.quantity, ol.price, ol.config_data, ol.config_hash
		FROM order_lines ol
		JOIN products p ON p.product_id = ol.product_id
		WHERE ol.order_id = $1
		ORDER BY ol.order_line_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l          domain.OrderLine
			configData sql.NullString
		)
		if err := rows.Scan(&l.OrderLineID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.Price, &configData, &l.ConfigHash); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		l.ConfigData = nullStringPtr(configData)
		o.Lines = append(o.Lines, l)
	}
	return &o, rows.Err()
}

func (r *PostgresOrdersRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN users u ON u.user_id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.order_id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *PostgresOrdersRepository) ListOrders(ctx context.Context, filter OrdersFilter) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o JOIN users u ON u.user_id = o.user_id
		WHERE u.is_deleted = FALSE`
	args := []any{}
	if filter.Status != "" {
		query += ` AND o.status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY o.created_at DESC, o.order_id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *PostgresOrdersRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE order_id = $1`, orderID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return requireAffected(res, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound))
}

func (r *PostgresOrdersRepository) GetOrderStatistics(ctx context.Context, since time.Time) (*domain.OrderStatistics, error) {
	stats := &domain.OrderStatistics{ByStatus: map[domain.OrderStatus]int{}}

	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_price), 0)
		FROM orders
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for rows.Next() {
		var (
			status string
			count  int
			sum    float64
		)
		if err := rows.Scan(&status, &count, &sum); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order status count: %w", err)
		}
		stats.ByStatus[domain.OrderStatus(status)] = count
		stats.TotalOrders += count
		if domain.OrderStatus(status) == domain.OrderStatusCompleted {
			stats.Revenue = sum
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	monthRows, err := r.db.QueryContext(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		FROM orders
		WHERE created_at >= $1
		GROUP BY month
		ORDER BY month
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly orders: %w", err)
	}
	defer monthRows.Close()
	for monthRows.Next() {
		var mc domain.MonthlyCount
		if err := monthRows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly count: %w", err)
		}
		stats.MonthlyOrders = append(stats.MonthlyOrders, mc)
	}
	return stats, monthRows.Err()
}

func scanOrders(rows *sql.Rows) ([]domain.Order, error) {
	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
