package domain

import "time"

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses 全部合法状态（统计按此顺序输出）
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid 是否为合法状态
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order 订单
type Order struct {
	OrderID    int64       `db:"order_id" json:"order_id"`
	UserID     int64       `db:"user_id" json:"user_id"`
	UserName   string      `db:"user_name" json:"user_name"`
	TotalPrice float64     `db:"total_price" json:"total_price"`
	Status     OrderStatus `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	Lines      []OrderLine `db:"-" json:"lines"`
}

// OrderLine 订单行，ConfigData 从购物车行原样复制
type OrderLine struct {
	OrderLineID int64   `db:"order_line_id" json:"order_line_id"`
	OrderID     int64   `db:"order_id" json:"order_id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Price       float64 `db:"price" json:"price"`
	ConfigData  *string `db:"config_data" json:"config_data"`
	ConfigHash  string  `db:"config_hash" json:"config_hash"`
}

// OrderStatistics 订单统计
type OrderStatistics struct {
	TotalOrders   int                 `json:"total_orders"`
	ByStatus      map[OrderStatus]int `json:"by_status"`
	Revenue       float64             `json:"revenue"` // 仅统计 completed
	MonthlyOrders []MonthlyCount      `json:"monthly_orders"`
}

// MonthlyCount 单月订单数，Month 格式 "2006-01"
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}
