package domain

// Tag 标签（对应 tags 表）
// TagName 约定格式 "<topic> <> <value>"；不符合格式的归入 "Khác"
type Tag struct {
	TagID   int64  `db:"tag_id" json:"tag_id"`
	TagName string `db:"tag_name" json:"tag_name"` // 全局唯一
}

// ProductTag 商品-标签关联（UNIQUE(product_id, tag_id)）
type ProductTag struct {
	ProductTagID int64 `db:"product_tag_id" json:"product_tag_id"`
	ProductID    int64 `db:"product_id" json:"product_id"`
	TagID        int64 `db:"tag_id" json:"tag_id"`
}
