package service

import (
	"context"
	"fmt"

	"banmaytinh/internal/advisor"
	"banmaytinh/internal/domain"
	"banmaytinh/internal/metrics"
	"banmaytinh/internal/repository"

	"go.uber.org/zap"
)

// AdvisorService 选购顾问：按用户选择的标准给整机分档
type AdvisorService struct {
	productRepo repository.ProductsRepository
	tagRepo     repository.TagsRepository
	logger      *zap.Logger
}

func NewAdvisorService(productRepo repository.ProductsRepository, tagRepo repository.TagsRepository, logger *zap.Logger) *AdvisorService {
	return &AdvisorService{productRepo: productRepo, tagRepo: tagRepo, logger: logger}
}

// SuggestRequest suggest 请求
type SuggestRequest struct {
	Criteria []advisor.Criterion `json:"criteria"`
}

// Suggest 返回 domain.ErrEmptyCriteria 表示没有有效标准
func (s *AdvisorService) Suggest(ctx context.Context, req SuggestRequest) (*advisor.Result, error) {
	// 先校验，避免无效请求查库
	if len(advisor.NormalizeCriteria(req.Criteria)) == 0 {
		return nil, domain.ErrEmptyCriteria
	}

	isPC := true
	pcs, err := s.productRepo.ListProducts(ctx, repository.ProductsFilter{IsPC: &isPC})
	if err != nil {
		return nil, fmt.Errorf("failed to list PCs: %w", err)
	}

	candidates := make([]advisor.Candidate, 0, len(pcs))
	ids := make([]int64, 0, len(pcs))
	for _, p := range pcs {
		candidates = append(candidates, advisor.Candidate{ID: p.ProductID, Name: p.Name, Price: p.Price, Image: p.ImageURL})
		ids = append(ids, p.ProductID)
	}

	tags, err := s.tagRepo.ListTagNamesByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load PC tags: %w", err)
	}

	res, err := advisor.Suggest(req.Criteria, candidates, tags)
	if err != nil {
		return nil, err
	}

	metrics.RecordSuggestion(bestTier(res))
	s.logger.Debug("Advisor suggestion",
		zap.String("thresholds", res.Thresholds.String()),
		zap.Int("tier1", len(res.Tiers.Tier1)),
		zap.Int("tier2", len(res.Tiers.Tier2)),
		zap.Int("tier3", len(res.Tiers.Tier3)),
	)
	return res, nil
}

func bestTier(res *advisor.Result) string {
	switch {
	case len(res.Tiers.Tier1) > 0:
		return "tier1"
	case len(res.Tiers.Tier2) > 0:
		return "tier2"
	case len(res.Tiers.Tier3) > 0:
		return "tier3"
	default:
		return "none"
	}
}
