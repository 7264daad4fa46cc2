package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// orderTransitions is the allowed status graph. PENDING is only ever
// produced by order creation; CANCELLED is reachable from PENDING and
// PROCESSING only.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusCompleted},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// Order is immutable after creation except for status, payment status and
// payment reference, which the fulfillment/payment flows own.
type Order struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Number             string          `gorm:"type:varchar(40);not null;uniqueIndex" json:"number"`
	UserID             *int64          `gorm:"index" json:"user_id"`
	Status             OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus      PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod      string          `gorm:"type:varchar(40);not null" json:"payment_method"`
	PaymentRef         string          `gorm:"type:varchar(255)" json:"-"`
	BillingAddress     string          `gorm:"type:text;not null" json:"billing_address"`
	ShippingAddress    string          `gorm:"type:text;not null" json:"shipping_address"`
	DestinationCountry string          `gorm:"type:varchar(2);not null" json:"destination_country"`
	Subtotal           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Tax                decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Shipping           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping"`
	Total              decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	CouponCode         *string         `gorm:"type:varchar(64)" json:"coupon_code"`
	CreatedAt          time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// OrderTotals carries the authoritative money fields persisted on an order.
type OrderTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}
