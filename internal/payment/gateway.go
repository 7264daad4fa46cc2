// Package payment defines the capability contract the checkout surface
// needs from a payment provider. Order creation and payment capture are
// separate steps: the order pipeline never calls a gateway, it only
// guarantees the order exists before a caller charges it.
package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/model"
)

type Intent struct {
	ClientSecret string
	IntentID     string
}

type ChargeResult struct {
	Status        string
	TransactionID string
}

type RefundResult struct {
	Status   string
	RefundID string
}

type Gateway interface {
	CreateIntent(ctx context.Context, order model.Order) (Intent, error)
	Charge(ctx context.Context, order model.Order, paymentData map[string]string) (ChargeResult, error)
	// Refund refunds the given amount, or the full order total when amount
	// is nil.
	Refund(ctx context.Context, order model.Order, amount *decimal.Decimal) (RefundResult, error)
	Name() string
}
