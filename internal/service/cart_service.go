package service

import (
	"context"
	"fmt"

	"banmaytinh/internal/buildconfig"
	"banmaytinh/internal/domain"
	"banmaytinh/internal/metrics"
	"banmaytinh/internal/repository"

	"go.uber.org/zap"
)

// CartService 购物车
type CartService struct {
	cartRepo    repository.CartsRepository
	productRepo repository.ProductsRepository
	builder     *BuildPCService
	logger      *zap.Logger
}

func NewCartService(cartRepo repository.CartsRepository, productRepo repository.ProductsRepository, builder *BuildPCService, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		builder:     builder,
		logger:      logger,
	}
}

// CartView 购物车及合计
type CartView struct {
	CartID int64             `json:"cart_id"`
	Lines  []domain.CartLine `json:"lines"`
	Total  float64           `json:"total"`
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &CartView{CartID: cart.CartID, Lines: cart.Lines, Total: cart.Total()}, nil
}

// AddProductRequest 加入普通商品
type AddProductRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// AddProduct 同一商品再次加入时数量累加；超过库存返回 domain.ErrInsufficientStock
func (s *CartService) AddProduct(ctx context.Context, userID int64, req AddProductRequest) (*domain.CartLine, error) {
	// 1. 参数验证
	if req.ProductID <= 0 {
		return nil, fmt.Errorf("product_id is required: %w", domain.ErrInvalidArgument)
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	// 2. 库存校验（含购物车中已有数量）
	p, err := s.productRepo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStock(ctx, userID, p, req.Quantity); err != nil {
		return nil, err
	}

	// 3. 写入
	line, err := s.cartRepo.AddCartLine(ctx, userID, domain.CartLine{
		ProductID: p.ProductID,
		Quantity:  req.Quantity,
		Price:     p.PriceOrZero(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}
	metrics.RecordCartAdd("plain")
	return line, nil
}

// AddConfiguredPCRequest 加入自选配置的整机
type AddConfiguredPCRequest struct {
	PCID       int64                   `json:"pc_id"`
	Selections []buildconfig.Selection `json:"selections"`
	Quantity   int                     `json:"quantity"`
}

// AddConfiguredPC 相同配置（指纹一致）合并为同一行，不同配置为不同行
func (s *CartService) AddConfiguredPC(ctx context.Context, userID int64, req AddConfiguredPCRequest) (*domain.CartLine, *buildconfig.Configuration, error) {
	if req.PCID <= 0 {
		return nil, nil, fmt.Errorf("pc_id is required: %w", domain.ErrInvalidArgument)
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	cfg, pc, err := s.builder.BuildConfiguration(ctx, req.PCID, req.Selections)
	if err != nil {
		return nil, nil, err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return nil, nil, err
	}

	line, err := s.cartRepo.AddCartLine(ctx, userID, domain.CartLine{
		ProductID:  pc.ProductID,
		Quantity:   req.Quantity,
		Price:      cfg.UnitPrice,
		ConfigData: &data,
		ConfigHash: cfg.Fingerprint(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add configured PC: %w", err)
	}

	metrics.RecordCartAdd("configured")
	s.logger.Info("Configured PC added to cart",
		zap.Int64("user_id", userID),
		zap.Int64("pc_id", pc.ProductID),
		zap.String("config_name", cfg.ConfigName),
		zap.Float64("unit_price", cfg.UnitPrice),
	)
	return line, cfg, nil
}

// checkStock 购物车中该商品的普通行数量 + extra 不能超过库存
func (s *CartService) checkStock(ctx context.Context, userID int64, p *domain.Product, extra int) error {
	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}
	inCart := 0
	for _, l := range cart.Lines {
		if l.ProductID == p.ProductID && l.ConfigHash == "" {
			inCart += l.Quantity
		}
	}
	if inCart+extra > p.Stock {
		return fmt.Errorf("product %d stock %d: %w", p.ProductID, p.Stock, domain.ErrInsufficientStock)
	}
	return nil
}

// IncreaseLine 数量 +1；普通商品行同样校验库存
func (s *CartService) IncreaseLine(ctx context.Context, userID, lineID int64) error {
	line, err := s.cartRepo.GetCartLine(ctx, userID, lineID)
	if err != nil {
		return err
	}
	if line.ConfigHash == "" {
		p, err := s.productRepo.GetProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if err := s.checkStock(ctx, userID, p, 1); err != nil {
			return err
		}
	}
	return s.cartRepo.SetCartLineQuantity(ctx, userID, lineID, line.Quantity+1)
}

// DecreaseLine 数量 -1；数量为 1 时删除该行
func (s *CartService) DecreaseLine(ctx context.Context, userID, lineID int64) error {
	line, err := s.cartRepo.GetCartLine(ctx, userID, lineID)
	if err != nil {
		return err
	}
	if line.Quantity <= 1 {
		return s.cartRepo.DeleteCartLine(ctx, userID, lineID)
	}
	return s.cartRepo.SetCartLineQuantity(ctx, userID, lineID, line.Quantity-1)
}

func (s *CartService) RemoveLine(ctx context.Context, userID, lineID int64) error {
	return s.cartRepo.DeleteCartLine(ctx, userID, lineID)
}
