package domain

import "time"

// Cart 购物车（每个用户最多一个）
type Cart struct {
	CartID    int64      `db:"cart_id" json:"cart_id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Lines     []CartLine `db:"-" json:"lines"`
}

// CartLine 购物车行
// ConfigHash：普通商品为空串；配置整机为配置指纹，(cart_id, product_id, config_hash) 唯一
type CartLine struct {
	CartLineID  int64   `db:"cart_line_id" json:"cart_line_id"`
	CartID      int64   `db:"cart_id" json:"cart_id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Price       float64 `db:"price" json:"price"` // 单价（整机含所选配件）
	ConfigData  *string `db:"config_data" json:"config_data"`
	ConfigHash  string  `db:"config_hash" json:"config_hash"`
	ProductName string  `db:"product_name" json:"product_name"`
	ImageURL    string  `db:"image" json:"image"`
}

// Subtotal 行小计
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Total 购物车合计
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}
