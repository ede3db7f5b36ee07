package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"banmaytinh/internal/domain"

	"github.com/lib/pq"
)

// PostgresProductsRepository 商品Repository实现
type PostgresProductsRepository struct {
	db *sql.DB
}

func NewPostgresProductsRepository(db *sql.DB) *PostgresProductsRepository {
	return &PostgresProductsRepository{db: db}
}

var _ ProductsRepository = (*PostgresProductsRepository)(nil)

// productColumns 与 scanProduct 的列顺序保持一致
func productColumns(alias string) string {
	cols := []string{"product_id", "name", "category_id", "brand_id", "price", "is_pc", "specs", "image", "stock", "created_at", "updated_at"}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (domain.Product, error) {
	var (
		p          domain.Product
		categoryID sql.NullInt64
		brandID    sql.NullInt64
		price      sql.NullFloat64
	)
	err := s.Scan(&p.ProductID, &p.Name, &categoryID, &brandID, &price, &p.IsPC, &p.Specs, &p.ImageURL, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.CategoryID = nullInt64Ptr(categoryID)
	p.BrandID = nullInt64Ptr(brandID)
	p.Price = nullFloatPtr(price)
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresProductsRepository) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns("p")+` FROM products p WHERE p.product_id = $1`, productID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *PostgresProductsRepository) GetProductsByIDs(ctx context.Context, productIDs []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns("p")+` FROM products p WHERE p.product_id = ANY($1)`, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()
	list, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ProductID] = p
	}
	return out, nil
}

func (r *PostgresProductsRepository) ListProducts(ctx context.Context, filter ProductsFilter) ([]domain.Product, error) {
	// 构建WHERE条件
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filter.IsPC != nil {
		where = append(where, fmt.Sprintf("p.is_pc = $%d", argIdx))
		args = append(args, *filter.IsPC)
		argIdx++
	}
	if filter.CategoryID != nil {
		where = append(where, fmt.Sprintf("p.category_id = $%d", argIdx))
		args = append(args, *filter.CategoryID)
		argIdx++
	}
	if filter.BrandID != nil {
		where = append(where, fmt.Sprintf("p.brand_id = $%d", argIdx))
		args = append(args, *filter.BrandID)
		argIdx++
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", argIdx))
		args = append(args, "%"+s+"%")
		argIdx++
	}
	if filter.ExcludeID != 0 {
		where = append(where, fmt.Sprintf("p.product_id <> $%d", argIdx))
		args = append(args, filter.ExcludeID)
		argIdx++
	}

	query := `SELECT ` + productColumns("p") + ` FROM products p WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY p.created_at DESC, p.product_id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *PostgresProductsRepository) ListTopSelling(ctx context.Context, isPC bool, limit int) ([]domain.ProductSales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns("p")+`, COALESCE(SUM(ol.quantity), 0) AS sold
		FROM products p
		JOIN order_lines ol ON ol.product_id = p.product_id
		WHERE p.is_pc = $1
		GROUP BY p.product_id
		ORDER BY sold DESC, p.product_id
		LIMIT $2
	`, isPC, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top selling: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductSales
	for rows.Next() {
		var (
			ps         domain.ProductSales
			categoryID sql.NullInt64
			brandID    sql.NullInt64
			price      sql.NullFloat64
		)
		p := &ps.Product
		if err := rows.Scan(&p.ProductID, &p.Name, &categoryID, &brandID, &price, &p.IsPC, &p.Specs, &p.ImageURL, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &ps.Sold); err != nil {
			return nil, fmt.Errorf("failed to scan top selling: %w", err)
		}
		p.CategoryID = nullInt64Ptr(categoryID)
		p.BrandID = nullInt64Ptr(brandID)
		p.Price = nullFloatPtr(price)
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (r *PostgresProductsRepository) CreateProduct(ctx context.Context, p *domain.Product) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, category_id, brand_id, price, is_pc, specs, image, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING product_id
	`, p.Name, p.CategoryID, p.BrandID, p.Price, p.IsPC, p.Specs, p.ImageURL, p.Stock).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("category or brand: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to create product: %w", err)
	}
	return id, nil
}

func (r *PostgresProductsRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category_id = $3, brand_id = $4, price = $5, is_pc = $6,
		    specs = $7, image = $8, stock = $9, updated_at = NOW()
		WHERE product_id = $1
	`, p.ProductID, p.Name, p.CategoryID, p.BrandID, p.Price, p.IsPC, p.Specs, p.ImageURL, p.Stock)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("category or brand: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireAffected(res, fmt.Errorf("product %d: %w", p.ProductID, domain.ErrNotFound))
}

func (r *PostgresProductsRepository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT brand_id, name FROM brands ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	var out []domain.Brand
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.BrandID, &b.Name); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresProductsRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category_id, name, parent_id FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var (
			c        domain.Category
			parentID sql.NullInt64
		)
		if err := rows.Scan(&c.CategoryID, &c.Name, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ParentID = nullInt64Ptr(parentID)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresProductsRepository) DeleteProduct(ctx context.Context, productID int64) error {
	// product_tags / option_items / cart_lines 级联删除，order_lines 为 RESTRICT
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("product %d has orders: %w", productID, domain.ErrInUse)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireAffected(res, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound))
}

func (r *PostgresProductsRepository) CreateBrand(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `INSERT INTO brands (name) VALUES ($1) RETURNING brand_id`, name).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("brand %q: %w", name, domain.ErrDuplicateName)
		}
		return 0, fmt.Errorf("failed to create brand: %w", err)
	}
	return id, nil
}

func (r *PostgresProductsRepository) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	res, err := r.db.ExecContext(ctx, `UPDATE brands SET name = $2 WHERE brand_id = $1`, b.BrandID, b.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("brand %q: %w", b.Name, domain.ErrDuplicateName)
		}
		return fmt.Errorf("failed to update brand: %w", err)
	}
	return requireAffected(res, fmt.Errorf("brand %d: %w", b.BrandID, domain.ErrNotFound))
}

func (r *PostgresProductsRepository) DeleteBrand(ctx context.Context, brandID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE brand_id = $1`, brandID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("brand %d has products: %w", brandID, domain.ErrInUse)
		}
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	return requireAffected(res, fmt.Errorf("brand %d: %w", brandID, domain.ErrNotFound))
}

func (r *PostgresProductsRepository) CreateCategory(ctx context.Context, c *domain.Category) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, parent_id) VALUES ($1, $2) RETURNING category_id
	`, c.Name, c.ParentID).Scan(&id)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return 0, fmt.Errorf("category %q: %w", c.Name, domain.ErrDuplicateName)
		case isForeignKeyViolation(err):
			return 0, fmt.Errorf("parent category: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	return id, nil
}

func (r *PostgresProductsRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = $2, parent_id = $3 WHERE category_id = $1
	`, c.CategoryID, c.Name, c.ParentID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("category %q: %w", c.Name, domain.ErrDuplicateName)
		case isForeignKeyViolation(err):
			return fmt.Errorf("parent category: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(res, fmt.Errorf("category %d: %w", c.CategoryID, domain.ErrNotFound))
}

func (r *PostgresProductsRepository) DeleteCategory(ctx context.Context, categoryID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE category_id = $1`, categoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("category %d has products or subcategories: %w", categoryID, domain.ErrInUse)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(res, fmt.Errorf("category %d: %w", categoryID, domain.ErrNotFound))
}
