package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banmaytinh/internal/domain"
)

// PostgresOptionGroupsRepository 配件组Repository实现
type PostgresOptionGroupsRepository struct {
	db *sql.DB
}

func NewPostgresOptionGroupsRepository(db *sql.DB) *PostgresOptionGroupsRepository {
	return &PostgresOptionGroupsRepository{db: db}
}

var _ OptionGroupsRepository = (*PostgresOptionGroupsRepository)(nil)

const optionItemsQuery = `
	SELECT oi.option_item_id, oi.option_group_id, oi.product_id, oi.is_default, p.name, p.price
	FROM option_items oi
	JOIN products p ON p.product_id = oi.product_id
`

func (r *PostgresOptionGroupsRepository) ListOptionGroups(ctx context.Context) ([]domain.OptionGroup, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT option_group_id, name, description FROM option_groups ORDER BY option_group_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list option groups: %w", err)
	}
	var groups []domain.OptionGroup
	for rows.Next() {
		var g domain.OptionGroup
		if err := rows.Scan(&g.OptionGroupID, &g.Name, &g.Description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan option group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	itemRows, err := r.db.QueryContext(ctx, optionItemsQuery+` ORDER BY oi.option_group_id, oi.option_item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list option items: %w", err)
	}
	defer itemRows.Close()
	items, err := scanOptionItems(itemRows)
	if err != nil {
		return nil, err
	}

	idx := make(map[int64]int, len(groups))
	for i, g := range groups {
		idx[g.OptionGroupID] = i
	}
	for _, it := range items {
		if i, ok := idx[it.OptionGroupID]; ok {
			groups[i].Items = append(groups[i].Items, it)
		}
	}
	return groups, nil
}

func (r *PostgresOptionGroupsRepository) GetOptionGroup(ctx context.Context, groupID int64) (*domain.OptionGroup, error) {
	var g domain.OptionGroup
	err := r.db.QueryRowContext(ctx,
		`SELECT option_group_id, name, description FROM option_groups WHERE option_group_id = $1`, groupID,
	).Scan(&g.OptionGroupID, &g.Name, &g.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("option group %d: %w", groupID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get option group: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, optionItemsQuery+` WHERE oi.option_group_id = $1 ORDER BY oi.option_item_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list option items: %w", err)
	}
	defer rows.Close()
	if g.Items, err = scanOptionItems(rows); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *PostgresOptionGroupsRepository) CreateOptionGroup(ctx context.Context, g *domain.OptionGroup) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO option_groups (name, description) VALUES ($1, $2) RETURNING option_group_id`,
		g.Name, g.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create option group: %w", err)
	}
	return id, nil
}

func (r *PostgresOptionGroupsRepository) UpdateOptionGroup(ctx context.Context, g *domain.OptionGroup) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE option_groups SET name = $2, description = $3 WHERE option_group_id = $1`,
		g.OptionGroupID, g.Name, g.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to update option group: %w", err)
	}
	return requireAffected(res, fmt.Errorf("option group %d: %w", g.OptionGroupID, domain.ErrNotFound))
}

func (r *PostgresOptionGroupsRepository) DeleteOptionGroup(ctx context.Context, groupID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM option_items WHERE option_group_id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to delete option items: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM option_groups WHERE option_group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete option group: %w", err)
	}
	if err := requireAffected(res, fmt.Errorf("option group %d: %w", groupID, domain.ErrNotFound)); err != nil {
		return err
	}
	return tx.Commit()
}

// AddOptionItem 依赖 UNIQUE(option_group_id, product_id)：冲突时不返回行
func (r *PostgresOptionGroupsRepository) AddOptionItem(ctx context.Context, groupID, productID int64, isDefault bool) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO option_items (option_group_id, product_id, is_default)
		VALUES ($1, $2, $3)
		ON CONFLICT (option_group_id, product_id) DO NOTHING
		RETURNING option_item_id
	`, groupID, productID, isDefault).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("group %d product %d: %w", groupID, productID, domain.ErrDuplicateItem)
		}
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("group %d or product %d: %w", groupID, productID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to add option item: %w", err)
	}
	return id, nil
}

func (r *PostgresOptionGroupsRepository) RemoveOptionItem(ctx context.Context, groupID, itemID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM option_items WHERE option_item_id = $1 AND option_group_id = $2`, itemID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove option item: %w", err)
	}
	return requireAffected(res, fmt.Errorf("group %d item %d: %w", groupID, itemID, domain.ErrNotInGroup))
}

func (r *PostgresOptionGroupsRepository) ListCandidateComponents(ctx context.Context, groupID int64, categoryID *int64) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns("p") + `
		FROM products p
		WHERE p.is_pc = FALSE
		  AND NOT EXISTS (
		      SELECT 1 FROM option_items oi
		      WHERE oi.option_group_id = $1 AND oi.product_id = p.product_id
		  )`
	args := []any{groupID}
	if categoryID != nil {
		query += ` AND p.category_id = $2`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY p.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate components: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanOptionItems(rows *sql.Rows) ([]domain.OptionItem, error) {
	var out []domain.OptionItem
	for rows.Next() {
		var (
			it    domain.OptionItem
			price sql.NullFloat64
		)
		if err := rows.Scan(&it.OptionItemID, &it.OptionGroupID, &it.ProductID, &it.IsDefault, &it.ProductName, &price); err != nil {
			return nil, fmt.Errorf("failed to scan option item: %w", err)
		}
		it.Price = nullFloatPtr(price)
		out = append(out, it)
	}
	return out, rows.Err()
}
