package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponTypeFixed   CouponType = "FIXED"
	CouponTypePercent CouponType = "PERCENT"
)

type Coupon struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string           `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Type        CouponType       `gorm:"type:varchar(20);not null" json:"type"`
	Value       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"value"`
	MaxDiscount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"max_discount"`
	UsageLimit  *int64           `json:"usage_limit"`
	UsedCount   int64            `gorm:"not null;default:0" json:"used_count"`
	StartsAt    *time.Time       `json:"starts_at"`
	ExpiresAt   *time.Time       `json:"expires_at"`
	IsActive    bool             `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ApplicableAt reports whether the coupon may be applied at the given time:
// active, inside its window, and not past its usage limit. Discount math is
// a separate concern handled by the pricing engine.
func (c Coupon) ApplicableAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}
