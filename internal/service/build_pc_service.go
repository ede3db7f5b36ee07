package service

import (
	"context"
	"fmt"
	"strings"

	"banmaytinh/internal/buildconfig"
	"banmaytinh/internal/domain"
	"banmaytinh/internal/repository"

	"go.uber.org/zap"
)

// BuildPCService 整机配件组维护 + 整机详情
type BuildPCService struct {
	groupRepo   repository.OptionGroupsRepository
	productRepo repository.ProductsRepository
	tagRepo     repository.TagsRepository
	logger      *zap.Logger
}

func NewBuildPCService(groupRepo repository.OptionGroupsRepository, productRepo repository.ProductsRepository, tagRepo repository.TagsRepository, logger *zap.Logger) *BuildPCService {
	return &BuildPCService{
		groupRepo:   groupRepo,
		productRepo: productRepo,
		tagRepo:     tagRepo,
		logger:      logger,
	}
}

// OptionGroupRequest 创建/修改配件组
type OptionGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r OptionGroupRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required: %w", domain.ErrInvalidArgument)
	}
	return nil
}

func (s *BuildPCService) ListGroups(ctx context.Context) ([]domain.OptionGroup, error) {
	groups, err := s.groupRepo.ListOptionGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list option groups: %w", err)
	}
	return groups, nil
}

func (s *BuildPCService) CreateGroup(ctx context.Context, req OptionGroupRequest) (*domain.OptionGroup, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	g := &domain.OptionGroup{Name: strings.TrimSpace(req.Name), Description: req.Description}
	id, err := s.groupRepo.CreateOptionGroup(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to create option group: %w", err)
	}
	g.OptionGroupID = id
	g.Items = []domain.OptionItem{}
	s.logger.Info("Option group created", zap.Int64("option_group_id", id), zap.String("name", g.Name))
	return g, nil
}

func (s *BuildPCService) UpdateGroup(ctx context.Context, groupID int64, req OptionGroupRequest) error {
	if err := req.validate(); err != nil {
		return err
	}
	g := &domain.OptionGroup{OptionGroupID: groupID, Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := s.groupRepo.UpdateOptionGroup(ctx, g); err != nil {
		return fmt.Errorf("failed to update option group: %w", err)
	}
	return nil
}

func (s *BuildPCService) DeleteGroup(ctx context.Context, groupID int64) error {
	if err := s.groupRepo.DeleteOptionGroup(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete option group: %w", err)
	}
	s.logger.Info("Option group deleted", zap.Int64("option_group_id", groupID))
	return nil
}

// AddItemRequest 向配件组添加配件
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	IsDefault bool  `json:"is_default"`
}

// AddItem 重复添加返回 domain.ErrDuplicateItem
func (s *BuildPCService) AddItem(ctx context.Context, groupID int64, req AddItemRequest) (*domain.OptionItem, error) {
	if req.ProductID <= 0 {
		return nil, fmt.Errorf("product_id is required: %w", domain.ErrInvalidArgument)
	}
	p, err := s.productRepo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if p.IsPC {
		return nil, fmt.Errorf("product %d is a PC, not a component: %w", p.ProductID, domain.ErrInvalidArgument)
	}

	id, err := s.groupRepo.AddOptionItem(ctx, groupID, req.ProductID, req.IsDefault)
	if err != nil {
		return nil, err
	}
	return &domain.OptionItem{
		OptionItemID:  id,
		OptionGroupID: groupID,
		ProductID:     p.ProductID,
		IsDefault:     req.IsDefault,
		ProductName:   p.Name,
		Price:         p.Price,
	}, nil
}

// RemoveItem 选项不属于该组返回 domain.ErrNotInGroup
func (s *BuildPCService) RemoveItem(ctx context.Context, groupID, itemID int64) error {
	return s.groupRepo.RemoveOptionItem(ctx, groupID, itemID)
}

// Candidates 可加入该组的配件；能从组名推断分类时按分类过滤
func (s *BuildPCService) Candidates(ctx context.Context, groupID int64) ([]domain.Product, error) {
	g, err := s.groupRepo.GetOptionGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var categoryID *int64
	if c := buildconfig.MatchCategory(g.Name, categories); c != nil {
		categoryID = &c.CategoryID
	}
	products, err := s.groupRepo.ListCandidateComponents(ctx, groupID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate components: %w", err)
	}
	return products, nil
}

// PCDetail 整机详情页
type PCDetail struct {
	PC           domain.Product       `json:"pc"`
	OptionGroups []domain.OptionGroup `json:"option_groups"`
	Tags         []TagItem            `json:"tags"`
	Related      []domain.Product     `json:"related"`
}

const relatedLimit = 4

// GetPCDetail 配件组中默认选项排在前面
func (s *BuildPCService) GetPCDetail(ctx context.Context, pcID int64) (*PCDetail, error) {
	pc, err := s.productRepo.GetProduct(ctx, pcID)
	if err != nil {
		return nil, err
	}
	if !pc.IsPC {
		return nil, fmt.Errorf("product %d is not a PC: %w", pcID, domain.ErrNotFound)
	}

	groups, err := s.groupRepo.ListOptionGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list option groups: %w", err)
	}
	for i := range groups {
		groups[i].Items = buildconfig.SortedForDisplay(groups[i].Items)
	}

	tags, err := s.tagRepo.ListTagsByProduct(ctx, pcID)
	if err != nil {
		return nil, fmt.Errorf("failed to list PC tags: %w", err)
	}
	tagItems := make([]TagItem, 0, len(tags))
	for _, t := range tags {
		tagItems = append(tagItems, toTagItem(t))
	}

	isPC := true
	related, err := s.productRepo.ListProducts(ctx, repository.ProductsFilter{IsPC: &isPC, ExcludeID: pcID, Limit: relatedLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list related PCs: %w", err)
	}

	return &PCDetail{PC: *pc, OptionGroups: groups, Tags: tagItems, Related: related}, nil
}

// BuildConfiguration 校验选择并生成配置记录（加入购物车前调用）
func (s *BuildPCService) BuildConfiguration(ctx context.Context, pcID int64, selections []buildconfig.Selection) (*buildconfig.Configuration, *domain.Product, error) {
	pc, err := s.productRepo.GetProduct(ctx, pcID)
	if err != nil {
		return nil, nil, err
	}
	groups, err := s.groupRepo.ListOptionGroups(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list option groups: %w", err)
	}

	ids := make([]int64, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ProductID)
	}
	components, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load components: %w", err)
	}

	cfg, err := buildconfig.Build(*pc, groups, components, selections)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pc, nil
}
