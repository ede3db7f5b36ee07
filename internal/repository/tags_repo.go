package repository

import (
	"context"

	"banmaytinh/internal/domain"
)

// TagsRepository 标签Repository接口
type TagsRepository interface {
	// ListTags 全部标签，按 tag_name 排序
	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetTag(ctx context.Context, tagID int64) (*domain.Tag, error)
	GetTagByName(ctx context.Context, tagName string) (*domain.Tag, error)

	// CreateTag tag_name 已存在时返回 domain.ErrDuplicateName
	CreateTag(ctx context.Context, tagName string) (int64, error)
	// UpdateTagName 不存在返回 domain.ErrNotFound，重名返回 domain.ErrDuplicateName
	UpdateTagName(ctx context.Context, tagID int64, tagName string) error
	// DeleteTag 同时删除所有商品关联
	DeleteTag(ctx context.Context, tagID int64) error

	// AttachTag 已关联时返回 domain.ErrDuplicateTag
	AttachTag(ctx context.Context, productID, tagID int64) error
	DetachTag(ctx context.Context, productID, tagID int64) error

	ListProductsByTag(ctx context.Context, tagID int64) ([]domain.Product, error)
	ListTagsByProduct(ctx context.Context, productID int64) ([]domain.Tag, error)
	// ListTagNamesByProducts 商品ID -> 标签名（选购顾问评分输入）
	ListTagNamesByProducts(ctx context.Context, productIDs []int64) (map[int64][]string, error)
}
