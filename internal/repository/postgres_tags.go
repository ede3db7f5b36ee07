package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"banmaytinh/internal/domain"

	"github.com/lib/pq"
)

// PostgresTagsRepository 标签Repository实现
type PostgresTagsRepository struct {
	db *sql.DB
}

// NewPostgresTagsRepository 创建标签Repository
func NewPostgresTagsRepository(db *sql.DB) *PostgresTagsRepository {
	return &PostgresTagsRepository{db: db}
}

// 确保实现了接口
var _ TagsRepository = (*PostgresTagsRepository)(nil)

func (r *PostgresTagsRepository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tag_id, tag_name FROM tags ORDER BY tag_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()
	return scanTags(rows)
}

func (r *PostgresTagsRepository) GetTag(ctx context.Context, tagID int64) (*domain.Tag, error) {
	var t domain.Tag
	err := r.db.QueryRowContext(ctx, `SELECT tag_id, tag_name FROM tags WHERE tag_id = $1`, tagID).
		Scan(&t.TagID, &t.TagName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag %d: %w", tagID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &t, nil
}

func (r *PostgresTagsRepository) GetTagByName(ctx context.Context, tagName string) (*domain.Tag, error) {
	var t domain.Tag
	err := r.db.QueryRowContext(ctx, `SELECT tag_id, tag_name FROM tags WHERE tag_name = $1`, tagName).
		Scan(&t.TagID, &t.TagName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag %q: %w", tagName, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}
	return &t, nil
}

func (r *PostgresTagsRepository) CreateTag(ctx context.Context, tagName string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tags (tag_name) VALUES ($1) RETURNING tag_id`, tagName,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("tag %q: %w", tagName, domain.ErrDuplicateName)
		}
		return 0, fmt.Errorf("failed to create tag: %w", err)
	}
	return id, nil
}

func (r *PostgresTagsRepository) UpdateTagName(ctx context.Context, tagID int64, tagName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tags SET tag_name = $2 WHERE tag_id = $1`, tagID, tagName)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tag %q: %w", tagName, domain.ErrDuplicateName)
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}
	return requireAffected(res, fmt.Errorf("tag %d: %w", tagID, domain.ErrNotFound))
}

func (r *PostgresTagsRepository) DeleteTag(ctx context.Context, tagID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE tag_id = $1`, tagID); err != nil {
		return fmt.Errorf("failed to delete product tags: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE tag_id = $1`, tagID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if err := requireAffected(res, fmt.Errorf("tag %d: %w", tagID, domain.ErrNotFound)); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresTagsRepository) AttachTag(ctx context.Context, productID, tagID int64) error {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO product_tags (product_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (product_id, tag_id) DO NOTHING
		RETURNING product_tag_id
	`, productID, tagID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %d tag %d: %w", productID, tagID, domain.ErrDuplicateTag)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("product %d or tag %d: %w", productID, tagID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to attach tag: %w", err)
	}
	return nil
}

func (r *PostgresTagsRepository) DetachTag(ctx context.Context, productID, tagID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = $1 AND tag_id = $2`, productID, tagID)
	if err != nil {
		return fmt.Errorf("failed to detach tag: %w", err)
	}
	return requireAffected(res, fmt.Errorf("product %d tag %d: %w", productID, tagID, domain.ErrNotFound))
}

func (r *PostgresTagsRepository) ListProductsByTag(ctx context.Context, tagID int64) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns("p")+`
		FROM products p
		JOIN product_tags pt ON pt.product_id = p.product_id
		WHERE pt.tag_id = $1
		ORDER BY p.name
	`, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by tag: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *PostgresTagsRepository) ListTagsByProduct(ctx context.Context, productID int64) ([]domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.tag_id, t.tag_name
		FROM tags t
		JOIN product_tags pt ON pt.tag_id = t.tag_id
		WHERE pt.product_id = $1
		ORDER BY t.tag_name
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags by product: %w", err)
	}
	defer rows.Close()
	return scanTags(rows)
}

func (r *PostgresTagsRepository) ListTagNamesByProducts(ctx context.Context, productIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT pt.product_id, t.tag_name
		FROM product_tags pt
		JOIN tags t ON t.tag_id = pt.tag_id
		WHERE pt.product_id = ANY($1)
	`, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list product tag names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var name string
		if err := rows.Scan(&productID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan product tag: %w", err)
		}
		out[productID] = append(out[productID], name)
	}
	return out, rows.Err()
}

func scanTags(rows *sql.Rows) ([]domain.Tag, error) {
	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.TagID, &t.TagName); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// requireAffected 0 行受影响时返回 notFound
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
