package repository

import (
	"context"

	"banmaytinh/internal/domain"
)

// OptionGroupsRepository 整机配件组
type OptionGroupsRepository interface {
	// ListOptionGroups 全部配件组（含 Items），按 option_group_id 排序
	ListOptionGroups(ctx context.Context) ([]domain.OptionGroup, error)
	GetOptionGroup(ctx context.Context, groupID int64) (*domain.OptionGroup, error)
	CreateOptionGroup(ctx context.Context, g *domain.OptionGroup) (int64, error)
	UpdateOptionGroup(ctx context.Context, g *domain.OptionGroup) error
	// DeleteOptionGroup 同时删除组内选项
	DeleteOptionGroup(ctx context.Context, groupID int64) error

	// AddOptionItem 检查与插入为同一原子操作；重复返回 domain.ErrDuplicateItem
	AddOptionItem(ctx context.Context, groupID, productID int64, isDefault bool) (int64, error)
	// RemoveOptionItem 选项不属于该组时返回 domain.ErrNotInGroup
	RemoveOptionItem(ctx context.Context, groupID, itemID int64) error

	// ListCandidateComponents 不在组内的配件（非整机），categoryID 非空时按分类过滤
	ListCandidateComponents(ctx context.Context, groupID int64, categoryID *int64) ([]domain.Product, error)
}
