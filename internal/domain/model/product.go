package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID               int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string           `gorm:"type:varchar(255);not null" json:"name"`
	Description      string           `gorm:"type:text" json:"description"`
	SKU              string           `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	ImagePath        string           `gorm:"type:varchar(512)" json:"image_path"`
	Price            decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	SalePrice        *decimal.Decimal `gorm:"type:numeric(12,2)" json:"sale_price"`
	Stock            int64            `gorm:"not null" json:"stock"`
	BackorderAllowed bool             `gorm:"not null;default:false" json:"backorder_allowed"`
	IsActive         bool             `gorm:"not null;default:false" json:"is_active"`
	Variants         []Variant        `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt        time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

// Variant is a sellable variation of a product with its own price and stock.
type Variant struct {
	ID               int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID        int64            `gorm:"not null;index" json:"product_id"`
	SKU              string           `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	Options          string           `gorm:"type:varchar(255)" json:"options"`
	Price            decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	SalePrice        *decimal.Decimal `gorm:"type:numeric(12,2)" json:"sale_price"`
	Stock            int64            `gorm:"not null" json:"stock"`
	BackorderAllowed bool             `gorm:"not null;default:false" json:"backorder_allowed"`
	IsActive         bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// EffectivePrice resolves the price actually charged: the sale price when
// set and strictly below the list price, else the list price. Every caller
// that prices a unit (cart add, totals, order snapshot) goes through here.
func EffectivePrice(price decimal.Decimal, salePrice *decimal.Decimal) decimal.Decimal {
	if salePrice != nil && salePrice.LessThan(price) {
		return *salePrice
	}
	return price
}

// InventoryUnit is the sellable view of either a product or one of its
// variants, as returned by locked inventory reads. It is not a table.
type InventoryUnit struct {
	ProductID        int64
	VariantID        *int64
	Title            string
	SKU              string
	ImagePath        string
	VariantOptions   string
	Price            decimal.Decimal
	SalePrice        *decimal.Decimal
	Stock            int64
	BackorderAllowed bool
	IsActive         bool
}

func (u InventoryUnit) EffectivePrice() decimal.Decimal {
	return EffectivePrice(u.Price, u.SalePrice)
}
