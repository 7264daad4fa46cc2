package model

import "time"

// Adjustment reasons written by the checkout and fulfillment flows.
const (
	AdjustmentReasonBackorderOversell = "backorder_oversell"
	AdjustmentReasonOrderCancelled    = "order_cancelled"
)

// InventoryAdjustment records stock movements outside the plain decrement:
// backorder oversells (the portion of a sale below zero stock) and restocks
// from cancelled orders.
type InventoryAdjustment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	VariantID *int64    `json:"variant_id"`
	OrderID   *int64    `gorm:"index" json:"order_id"`
	Delta     int64     `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"type:varchar(64);not null" json:"reason"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
