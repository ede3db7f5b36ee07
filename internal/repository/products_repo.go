package repository

import (
	"context"

	"banmaytinh/internal/domain"
)

// ProductsFilter 商品列表过滤条件；结果按 created_at 倒序
type ProductsFilter struct {
	IsPC       *bool
	CategoryID *int64
	BrandID    *int64
	Search     string // 名称模糊匹配
	ExcludeID  int64
	Limit      int // 0 = 不限
}

// ProductsRepository 商品/品牌/分类
type ProductsRepository interface {
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, productIDs []int64) (map[int64]domain.Product, error)
	ListProducts(ctx context.Context, filter ProductsFilter) ([]domain.Product, error)
	// ListTopSelling 按订单行累计销量降序
	ListTopSelling(ctx context.Context, isPC bool, limit int) ([]domain.ProductSales, error)
	CreateProduct(ctx context.Context, p *domain.Product) (int64, error)
	UpdateProduct(ctx context.Context, p *domain.Product) error
	// DeleteProduct 同时删除标签关联、配件选项和购物车行；已有订单引用返回 domain.ErrInUse
	DeleteProduct(ctx context.Context, productID int64) error

	ListBrands(ctx context.Context) ([]domain.Brand, error)
	// CreateBrand 重名返回 domain.ErrDuplicateName
	CreateBrand(ctx context.Context, name string) (int64, error)
	UpdateBrand(ctx context.Context, b *domain.Brand) error
	// DeleteBrand 仍有商品时返回 domain.ErrInUse
	DeleteBrand(ctx context.Context, brandID int64) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	// CreateCategory 重名返回 domain.ErrDuplicateName，父分类不存在返回 domain.ErrNotFound
	CreateCategory(ctx context.Context, c *domain.Category) (int64, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	// DeleteCategory 仍有商品或子分类时返回 domain.ErrInUse
	DeleteCategory(ctx context.Context, categoryID int64) error
}
