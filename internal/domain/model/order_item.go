package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is an immutable snapshot of a purchased unit, captured at
// order-creation time so later catalog edits never alter historical orders.
type OrderItem struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64           `gorm:"not null;index" json:"order_id"`
	ProductID      int64           `gorm:"not null;index" json:"product_id"`
	VariantID      *int64          `json:"variant_id"`
	Title          string          `gorm:"type:varchar(255);not null" json:"title"`
	SKU            string          `gorm:"type:varchar(64);not null" json:"sku"`
	ImagePath      string          `gorm:"type:varchar(512)" json:"image_path"`
	VariantOptions string          `gorm:"type:varchar(255)" json:"variant_options"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity       int64           `gorm:"not null" json:"quantity"`
	LineTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
