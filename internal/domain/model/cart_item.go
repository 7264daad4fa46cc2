package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one cart line, unique per (owner, product, variant).
// Adding the same combination again adds to the quantity instead of
// creating a duplicate row. The price snapshot is captured at add time
// and is display-only; totals always re-read the live price.
type CartItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerKey          OwnerKey        `gorm:"type:varchar(80);not null;index;uniqueIndex:idx_cart_owner_unit,priority:1" json:"owner_key"`
	ProductID         int64           `gorm:"not null;index;uniqueIndex:idx_cart_owner_unit,priority:2" json:"product_id"`
	VariantID         *int64          `gorm:"uniqueIndex:idx_cart_owner_unit,priority:3" json:"variant_id"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// SameUnit reports whether the line refers to the same product/variant pair.
func (ci CartItem) SameUnit(productID int64, variantID *int64) bool {
	if ci.ProductID != productID {
		return false
	}
	if ci.VariantID == nil || variantID == nil {
		return ci.VariantID == variantID
	}
	return *ci.VariantID == *variantID
}
