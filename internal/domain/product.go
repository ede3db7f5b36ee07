package domain

import "time"

// Product 商品：IsPC=true 为整机（可配置），false 为配件
type Product struct {
	ProductID  int64     `db:"product_id" json:"product_id"`
	Name       string    `db:"name" json:"name"`
	CategoryID *int64    `db:"category_id" json:"category_id"`
	BrandID    *int64    `db:"brand_id" json:"brand_id"`
	Price      *float64  `db:"price" json:"price"` // 缺失价格按 0 排序/计价
	IsPC       bool      `db:"is_pc" json:"is_pc"`
	Specs      string    `db:"specs" json:"specs"`
	ImageURL   string    `db:"image" json:"image"`
	Stock      int       `db:"stock" json:"stock"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PriceOrZero 返回价格，未定价时为 0
func (p *Product) PriceOrZero() float64 {
	if p == nil || p.Price == nil {
		return 0
	}
	return *p.Price
}

// Brand 品牌
type Brand struct {
	BrandID int64  `db:"brand_id" json:"brand_id"`
	Name    string `db:"name" json:"name"`
}

// Category 分类（可嵌套）
type Category struct {
	CategoryID int64  `db:"category_id" json:"category_id"`
	Name       string `db:"name" json:"name"`
	ParentID   *int64 `db:"parent_id" json:"parent_id"`
}

// ProductSales 商品及累计销量（首页热销）
type ProductSales struct {
	Product
	Sold int `db:"sold" json:"sold"`
}
