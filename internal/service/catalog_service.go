package service

import (
	"context"
	"fmt"
	"strings"

	"banmaytinh/internal/domain"
	"banmaytinh/internal/repository"

	"go.uber.org/zap"
)

const homeSectionSize = 10

// CatalogService 商品目录（前台浏览 + 后台商品维护）
type CatalogService struct {
	productRepo repository.ProductsRepository
	logger      *zap.Logger
}

func NewCatalogService(productRepo repository.ProductsRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{productRepo: productRepo, logger: logger}
}

// HomePage 首页：最新配件/整机、热销配件/整机
type HomePage struct {
	LatestComponents []domain.Product      `json:"latest_components"`
	LatestPCs        []domain.Product      `json:"latest_pcs"`
	TopComponents    []domain.ProductSales `json:"top_components"`
	TopPCs           []domain.ProductSales `json:"top_pcs"`
}

func (s *CatalogService) Home(ctx context.Context) (*HomePage, error) {
	isPC, notPC := true, false
	home := &HomePage{}
	var err error

	if home.LatestComponents, err = s.productRepo.ListProducts(ctx, repository.ProductsFilter{IsPC: &notPC, Limit: homeSectionSize}); err != nil {
		return nil, fmt.Errorf("failed to list latest components: %w", err)
	}
	if home.LatestPCs, err = s.productRepo.ListProducts(ctx, repository.ProductsFilter{IsPC: &isPC, Limit: homeSectionSize}); err != nil {
		return nil, fmt.Errorf("failed to list latest PCs: %w", err)
	}
	if home.TopComponents, err = s.productRepo.ListTopSelling(ctx, false, homeSectionSize); err != nil {
		return nil, fmt.Errorf("failed to list top components: %w", err)
	}
	if home.TopPCs, err = s.productRepo.ListTopSelling(ctx, true, homeSectionSize); err != nil {
		return nil, fmt.Errorf("failed to list top PCs: %w", err)
	}
	return home, nil
}

// ListProductsRequest 商品列表查询
type ListProductsRequest struct {
	IsPC       bool
	CategoryID int64
	BrandID    int64
	Search     string
}

func (s *CatalogService) ListProducts(ctx context.Context, req ListProductsRequest) ([]domain.Product, error) {
	filter := repository.ProductsFilter{
		IsPC:   &req.IsPC,
		Search: strings.TrimSpace(req.Search),
	}
	if req.CategoryID > 0 {
		filter.CategoryID = &req.CategoryID
	}
	if req.BrandID > 0 {
		filter.BrandID = &req.BrandID
	}
	products, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ProductDetail 商品详情 + 同分类相关商品
type ProductDetail struct {
	Product domain.Product   `json:"product"`
	Related []domain.Product `json:"related"`
}

func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*ProductDetail, error) {
	p, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	detail := &ProductDetail{Product: *p, Related: []domain.Product{}}
	if p.CategoryID != nil {
		related, err := s.productRepo.ListProducts(ctx, repository.ProductsFilter{
			CategoryID: p.CategoryID,
			ExcludeID:  p.ProductID,
			Limit:      relatedLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list related products: %w", err)
		}
		detail.Related = related
	}
	return detail, nil
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.productRepo.ListBrands(ctx)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.productRepo.ListCategories(ctx)
}

// ProductRequest 后台创建/修改商品
type ProductRequest struct {
	Name       string   `json:"name"`
	CategoryID *int64   `json:"category_id"`
	BrandID    *int64   `json:"brand_id"`
	Price      *float64 `json:"price"`
	IsPC       bool     `json:"is_pc"`
	Specs      string   `json:"specs"`
	ImageURL   string   `json:"image"`
	Stock      int      `json:"stock"`
}

func (r ProductRequest) toProduct() (*domain.Product, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidArgument)
	}
	if r.Price != nil && *r.Price < 0 {
		return nil, fmt.Errorf("price must not be negative: %w", domain.ErrInvalidArgument)
	}
	if r.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", domain.ErrInvalidArgument)
	}
	return &domain.Product{
		Name:       name,
		CategoryID: r.CategoryID,
		BrandID:    r.BrandID,
		Price:      r.Price,
		IsPC:       r.IsPC,
		Specs:      r.Specs,
		ImageURL:   strings.TrimSpace(r.ImageURL),
		Stock:      r.Stock,
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req ProductRequest) (*domain.Product, error) {
	p, err := req.toProduct()
	if err != nil {
		return nil, err
	}
	id, err := s.productRepo.CreateProduct(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.Info("Product created", zap.Int64("product_id", id), zap.String("name", p.Name), zap.Bool("is_pc", p.IsPC))
	return s.productRepo.GetProduct(ctx, id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, productID int64, req ProductRequest) (*domain.Product, error) {
	p, err := req.toProduct()
	if err != nil {
		return nil, err
	}
	p.ProductID = productID
	if err := s.productRepo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.productRepo.GetProduct(ctx, productID)
}

// DeleteProduct 已有订单的商品不可删除（domain.ErrInUse）
func (s *CatalogService) DeleteProduct(ctx context.Context, productID int64) error {
	if err := s.productRepo.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.Int64("product_id", productID))
	return nil
}

// BrandRequest 后台创建/修改品牌
type BrandRequest struct {
	Name string `json:"name"`
}

func (r BrandRequest) name() (string, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", fmt.Errorf("brand name is required: %w", domain.ErrInvalidArgument)
	}
	return name, nil
}

func (s *CatalogService) CreateBrand(ctx context.Context, req BrandRequest) (*domain.Brand, error) {
	name, err := req.name()
	if err != nil {
		return nil, err
	}
	id, err := s.productRepo.CreateBrand(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Brand created", zap.Int64("brand_id", id), zap.String("name", name))
	return &domain.Brand{BrandID: id, Name: name}, nil
}

func (s *CatalogService) UpdateBrand(ctx context.Context, brandID int64, req BrandRequest) (*domain.Brand, error) {
	name, err := req.name()
	if err != nil {
		return nil, err
	}
	b := &domain.Brand{BrandID: brandID, Name: name}
	if err := s.productRepo.UpdateBrand(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBrand 仍有商品时返回 domain.ErrInUse
func (s *CatalogService) DeleteBrand(ctx context.Context, brandID int64) error {
	if err := s.productRepo.DeleteBrand(ctx, brandID); err != nil {
		return err
	}
	s.logger.Info("Brand deleted", zap.Int64("brand_id", brandID))
	return nil
}

// CategoryRequest 后台创建/修改分类；ParentID 为空表示顶级分类
type CategoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

func (r CategoryRequest) toCategory(categoryID int64) (*domain.Category, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", domain.ErrInvalidArgument)
	}
	parentID := r.ParentID
	if parentID != nil && *parentID <= 0 {
		parentID = nil
	}
	if parentID != nil && *parentID == categoryID {
		return nil, fmt.Errorf("category cannot be its own parent: %w", domain.ErrInvalidArgument)
	}
	return &domain.Category{CategoryID: categoryID, Name: name, ParentID: parentID}, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	c, err := req.toCategory(0)
	if err != nil {
		return nil, err
	}
	id, err := s.productRepo.CreateCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	c.CategoryID = id
	s.logger.Info("Category created", zap.Int64("category_id", id), zap.String("name", c.Name))
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID int64, req CategoryRequest) (*domain.Category, error) {
	c, err := req.toCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory 仍有商品或子分类时返回 domain.ErrInUse
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID int64) error {
	if err := s.productRepo.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.Int64("category_id", categoryID))
	return nil
}
