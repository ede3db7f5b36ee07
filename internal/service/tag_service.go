package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"banmaytinh/internal/advisor"
	"banmaytinh/internal/domain"
	"banmaytinh/internal/repository"
	"banmaytinh/internal/store"

	"go.uber.org/zap"
)

// topicCatalogKey 话题目录缓存键；任何标签写操作后失效
const topicCatalogKey = "advisor:topics"

// TagService 标签服务
type TagService struct {
	tagRepo     repository.TagsRepository
	productRepo repository.ProductsRepository
	kv          store.KV
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewTagService 创建标签服务
func NewTagService(tagRepo repository.TagsRepository, productRepo repository.ProductsRepository, kv store.KV, cacheTTL time.Duration, logger *zap.Logger) *TagService {
	return &TagService{
		tagRepo:     tagRepo,
		productRepo: productRepo,
		kv:          kv,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// TagItem 标签项（前端格式）
type TagItem struct {
	TagID   int64  `json:"tag_id"`
	TagName string `json:"tag_name"`
	Topic   string `json:"topic"`
	Value   string `json:"value"`
}

func toTagItem(t domain.Tag) TagItem {
	topic, value, _ := advisor.ParseTagName(t.TagName)
	return TagItem{TagID: t.TagID, TagName: t.TagName, Topic: topic, Value: value}
}

// ListTags 查询全部标签
func (s *TagService) ListTags(ctx context.Context) ([]TagItem, error) {
	tags, err := s.tagRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	items := make([]TagItem, 0, len(tags))
	for _, t := range tags {
		items = append(items, toTagItem(t))
	}
	return items, nil
}

// TopicCatalog 话题 -> 值列表，优先读缓存
func (s *TagService) TopicCatalog(ctx context.Context) (advisor.TopicCatalog, error) {
	if raw, err := s.kv.Get(ctx, topicCatalogKey); err == nil {
		var cached advisor.TopicCatalog
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		s.logger.Warn("Discarding malformed topic catalog cache", zap.String("key", topicCatalogKey))
	} else if !errors.Is(err, store.ErrMiss) {
		s.logger.Warn("Topic catalog cache read failed", zap.Error(err))
	}

	tags, err := s.tagRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	catalog := advisor.GroupByTopic(tags)

	if data, err := json.Marshal(catalog); err == nil {
		if err := s.kv.Set(ctx, topicCatalogKey, string(data), s.cacheTTL); err != nil {
			s.logger.Warn("Topic catalog cache write failed", zap.Error(err))
		}
	}
	return catalog, nil
}

func (s *TagService) invalidateCatalog(ctx context.Context) {
	if err := s.kv.Delete(ctx, topicCatalogKey); err != nil {
		s.logger.Warn("Topic catalog cache invalidation failed", zap.Error(err))
	}
}

// CreateTagRequest 创建标签请求；TagName 或 Topic+Value 二选一
type CreateTagRequest struct {
	TagName string `json:"tag_name"`
	Topic   string `json:"topic"`
	Value   string `json:"value"`
}

func (r CreateTagRequest) name() string {
	topic, value := strings.TrimSpace(r.Topic), strings.TrimSpace(r.Value)
	if topic != "" && value != "" {
		return advisor.CanonicalTagName(topic, value)
	}
	return strings.TrimSpace(r.TagName)
}

// CreateTag 创建标签
func (s *TagService) CreateTag(ctx context.Context, req CreateTagRequest) (*TagItem, error) {
	name := req.name()
	if name == "" {
		return nil, fmt.Errorf("tag_name is required: %w", domain.ErrInvalidArgument)
	}

	id, err := s.tagRepo.CreateTag(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	s.invalidateCatalog(ctx)

	s.logger.Info("Tag created", zap.Int64("tag_id", id), zap.String("tag_name", name))
	item := toTagItem(domain.Tag{TagID: id, TagName: name})
	return &item, nil
}

// UpdateTag 重命名标签
func (s *TagService) UpdateTag(ctx context.Context, tagID int64, req CreateTagRequest) error {
	name := req.name()
	if name == "" {
		return fmt.Errorf("tag_name is required: %w", domain.ErrInvalidArgument)
	}
	if err := s.tagRepo.UpdateTagName(ctx, tagID, name); err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}
	s.invalidateCatalog(ctx)
	return nil
}

// DeleteTag 删除标签及其商品关联
func (s *TagService) DeleteTag(ctx context.Context, tagID int64) error {
	if err := s.tagRepo.DeleteTag(ctx, tagID); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	s.invalidateCatalog(ctx)
	s.logger.Info("Tag deleted", zap.Int64("tag_id", tagID))
	return nil
}

// ListProductsByTag 含该标签的商品
func (s *TagService) ListProductsByTag(ctx context.Context, tagID int64) ([]domain.Product, error) {
	if _, err := s.tagRepo.GetTag(ctx, tagID); err != nil {
		return nil, err
	}
	products, err := s.tagRepo.ListProductsByTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by tag: %w", err)
	}
	return products, nil
}

// AttachTagRequest 给整机打标签：TagID 优先，否则按名称查找
type AttachTagRequest struct {
	TagID   int64  `json:"tag_id"`
	TagName string `json:"tag_name"`
}

// AttachTag 给整机关联标签
func (s *TagService) AttachTag(ctx context.Context, pcID int64, req AttachTagRequest) (*TagItem, error) {
	// 1. 参数验证
	pc, err := s.productRepo.GetProduct(ctx, pcID)
	if err != nil {
		return nil, err
	}
	if !pc.IsPC {
		return nil, fmt.Errorf("product %d is not a PC: %w", pcID, domain.ErrInvalidArgument)
	}

	// 2. 解析标签
	var tag *domain.Tag
	switch {
	case req.TagID > 0:
		tag, err = s.tagRepo.GetTag(ctx, req.TagID)
	case strings.TrimSpace(req.TagName) != "":
		tag, err = s.tagRepo.GetTagByName(ctx, strings.TrimSpace(req.TagName))
	default:
		return nil, fmt.Errorf("tag_id or tag_name is required: %w", domain.ErrInvalidArgument)
	}
	if err != nil {
		return nil, err
	}

	// 3. 关联
	if err := s.tagRepo.AttachTag(ctx, pcID, tag.TagID); err != nil {
		return nil, err
	}
	item := toTagItem(*tag)
	return &item, nil
}

// ListTagsByProduct 商品的标签
func (s *TagService) ListTagsByProduct(ctx context.Context, productID int64) ([]TagItem, error) {
	tags, err := s.tagRepo.ListTagsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product tags: %w", err)
	}
	items := make([]TagItem, 0, len(tags))
	for _, t := range tags {
		items = append(items, toTagItem(t))
	}
	return items, nil
}
