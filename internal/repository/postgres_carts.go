package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banmaytinh/internal/domain"
)

// PostgresCartsRepository 购物车Repository实现
type PostgresCartsRepository struct {
	db *sql.DB
}

func NewPostgresCartsRepository(db *sql.DB) *PostgresCartsRepository {
	return &PostgresCartsRepository{db: db}
}

var _ CartsRepository = (*PostgresCartsRepository)(nil)

const cartLineColumns = `cl.cart_line_id, cl.cart_id, cl.product_id, cl.quantity, cl.price, cl.config_data, cl.config_hash, p.name, p.image`

func scanCartLine(s rowScanner) (domain.CartLine, error) {
	var (
		l          domain.CartLine
		configData sql.NullString
	)
	err := s.Scan(&l.CartLineID, &l.CartID, &l.ProductID, &l.Quantity, &l.Price, &configData, &l.ConfigHash, &l.ProductName, &l.ImageURL)
	l.ConfigData = nullStringPtr(configData)
	return l, err
}

func (r *PostgresCartsRepository) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID, Lines: []domain.CartLine{}}
	err := r.db.QueryRowContext(ctx, `SELECT cart_id, created_at FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.CartID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+cartLineColumns+`
		FROM cart_lines cl
		JOIN products p ON p.product_id = cl.product_id
		WHERE cl.cart_id = $1
		ORDER BY cl.cart_line_id
	`, cart.CartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, l)
	}
	return cart, rows.Err()
}

// AddCartLine 依赖 UNIQUE(cart_id, product_id, config_hash) 合并相同配置
func (r *PostgresCartsRepository) AddCartLine(ctx context.Context, userID int64, line domain.CartLine) (*domain.CartLine, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var cartID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING cart_id
	`, userID).Scan(&cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure cart: %w", err)
	}

	out := line
	out.CartID = cartID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO cart_lines (cart_id, product_id, quantity, price, config_data, config_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id, config_hash)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
		RETURNING cart_line_id, quantity
	`, cartID, line.ProductID, line.Quantity, line.Price, line.ConfigData, line.ConfigHash).
		Scan(&out.CartLineID, &out.Quantity)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to upsert cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cart line: %w", err)
	}
	return &out, nil
}

func (r *PostgresCartsRepository) GetCartLine(ctx context.Context, userID, lineID int64) (*domain.CartLine, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+cartLineColumns+`
		FROM cart_lines cl
		JOIN carts c ON c.cart_id = cl.cart_id
		JOIN products p ON p.product_id = cl.product_id
		WHERE c.user_id = $1 AND cl.cart_line_id = $2
	`, userID, lineID)
	l, err := scanCartLine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cart line %d: %w", lineID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	return &l, nil
}

func (r *PostgresCartsRepository) SetCartLineQuantity(ctx context.Context, userID, lineID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_lines cl SET quantity = $3
		FROM carts c
		WHERE cl.cart_id = c.cart_id AND c.user_id = $1 AND cl.cart_line_id = $2
	`, userID, lineID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	return requireAffected(res, fmt.Errorf("cart line %d: %w", lineID, domain.ErrNotFound))
}

func (r *PostgresCartsRepository) DeleteCartLine(ctx context.Context, userID, lineID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_lines cl
		USING carts c
		WHERE cl.cart_id = c.cart_id AND c.user_id = $1 AND cl.cart_line_id = $2
	`, userID, lineID)
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	return requireAffected(res, fmt.Errorf("cart line %d: %w", lineID, domain.ErrNotFound))
}
