package domain

// OptionGroup 整机可选配件组（如 "CPU"、"RAM"）
type OptionGroup struct {
	OptionGroupID int64        `db:"option_group_id" json:"option_group_id"`
	Name          string       `db:"name" json:"name"`
	Description   string       `db:"description" json:"description"`
	Items         []OptionItem `db:"-" json:"items"`
}

// OptionItem 配件组中的一个可选配件（UNIQUE(option_group_id, product_id)）
type OptionItem struct {
	OptionItemID  int64    `db:"option_item_id" json:"option_item_id"`
	OptionGroupID int64    `db:"option_group_id" json:"option_group_id"`
	ProductID     int64    `db:"product_id" json:"product_id"`
	IsDefault     bool     `db:"is_default" json:"is_default"`
	ProductName   string   `db:"product_name" json:"product_name"` // JOIN products 得到，仅展示
	Price         *float64 `db:"price" json:"price"`
}

// HasProduct 组内是否已有该配件
func (g *OptionGroup) HasProduct(productID int64) bool {
	for _, it := range g.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// FindItemByProduct 按配件ID查找组内选项
func (g *OptionGroup) FindItemByProduct(productID int64) (OptionItem, bool) {
	for _, it := range g.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return OptionItem{}, false
}
