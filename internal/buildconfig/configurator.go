// Package buildconfig 整机配置：配件组成员维护 + 生成不可变的配置记录
package buildconfig

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"banmaytinh/internal/domain"
)

// Selection 用户在某个配件组中选择的配件
type Selection struct {
	GroupID   int64 `json:"group_id"`
	ProductID int64 `json:"product_id"`
}

// Configuration 购物车/订单行上保存的配置记录，生成后不再修改
type Configuration struct {
	PCID           int64       `json:"pc_id"`
	PCName         string      `json:"pc_name"`
	ConfigName     string      `json:"config_name"`
	Selections     []Selection `json:"selected_components"`
	ComponentNames []string    `json:"component_names"`
	UnitPrice      float64     `json:"unit_price"`
}

// AddItem 向组内追加配件；已存在时返回 ErrDuplicateItem，组保持不变
func AddItem(group *domain.OptionGroup, componentID int64, isDefault bool) (domain.OptionItem, error) {
	if group.HasProduct(componentID) {
		return domain.OptionItem{}, fmt.Errorf("group %d product %d: %w", group.OptionGroupID, componentID, domain.ErrDuplicateItem)
	}
	item := domain.OptionItem{
		OptionGroupID: group.OptionGroupID,
		ProductID:     componentID,
		IsDefault:     isDefault,
	}
	group.Items = append(group.Items, item)
	return item, nil
}

// RemoveItem 删除组内选项；选项不属于该组时返回 ErrNotInGroup
func RemoveItem(group *domain.OptionGroup, itemID int64) error {
	for i, it := range group.Items {
		if it.OptionItemID == itemID {
			group.Items = append(group.Items[:i], group.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("group %d item %d: %w", group.OptionGroupID, itemID, domain.ErrNotInGroup)
}

// SortedForDisplay 默认选项在前，其余保持原顺序（允许多个默认项）
func SortedForDisplay(items []domain.OptionItem) []domain.OptionItem {
	out := make([]domain.OptionItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsDefault && !out[j].IsDefault
	})
	return out
}

// Build 校验选择并生成配置记录
// groups: 当前配件组（含 Items）；components: 选中配件的商品信息
func Build(pc domain.Product, groups []domain.OptionGroup, components map[int64]domain.Product, selections []Selection) (*Configuration, error) {
	if !pc.IsPC {
		return nil, fmt.Errorf("product %d is not a PC: %w", pc.ProductID, domain.ErrInvalidArgument)
	}

	byID := make(map[int64]*domain.OptionGroup, len(groups))
	for i := range groups {
		byID[groups[i].OptionGroupID] = &groups[i]
	}

	cfg := &Configuration{
		PCID:           pc.ProductID,
		PCName:         pc.Name,
		Selections:     make([]Selection, 0, len(selections)),
		ComponentNames: make([]string, 0, len(selections)),
		UnitPrice:      pc.PriceOrZero(),
	}

	used := make(map[int64]struct{}, len(selections))
	for _, sel := range selections {
		if _, dup := used[sel.GroupID]; dup {
			return nil, fmt.Errorf("group %d selected more than once: %w", sel.GroupID, domain.ErrInvalidSelection)
		}
		used[sel.GroupID] = struct{}{}

		g, ok := byID[sel.GroupID]
		if !ok {
			return nil, fmt.Errorf("group %d does not exist: %w", sel.GroupID, domain.ErrInvalidSelection)
		}
		if !g.HasProduct(sel.ProductID) {
			return nil, fmt.Errorf("product %d not in group %q: %w", sel.ProductID, g.Name, domain.ErrInvalidSelection)
		}
		comp, ok := components[sel.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d not found: %w", sel.ProductID, domain.ErrInvalidSelection)
		}

		cfg.Selections = append(cfg.Selections, sel)
		cfg.ComponentNames = append(cfg.ComponentNames, comp.Name)
		cfg.UnitPrice += comp.PriceOrZero()
	}

	cfg.ConfigName = composeName(pc.Name, cfg.ComponentNames)
	return cfg, nil
}

// composeName "<pc name> (<c1>, <c2>, ...)"，无配件时只返回整机名
func composeName(pcName string, components []string) string {
	if len(components) == 0 {
		return pcName
	}
	return pcName + " (" + strings.Join(components, ", ") + ")"
}

// Fingerprint 配置指纹：整机ID + 按组排序后的选择，与选择顺序无关
func (c *Configuration) Fingerprint() string {
	sels := make([]Selection, len(c.Selections))
	copy(sels, c.Selections)
	sort.Slice(sels, func(i, j int) bool { return sels[i].GroupID < sels[j].GroupID })

	var b strings.Builder
	b.WriteString(strconv.FormatInt(c.PCID, 10))
	for _, s := range sels {
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(s.GroupID, 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(s.ProductID, 10))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Marshal 序列化为持久化文本
func (c *Configuration) Marshal() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return string(data), nil
}

// Unmarshal 解析持久化文本
func Unmarshal(data string) (*Configuration, error) {
	var c Configuration
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return &c, nil
}
