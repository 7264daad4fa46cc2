package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByNumber(ctx context.Context, number string) (model.Order, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	// UpdateTotals persists the authoritative money fields recomputed over
	// the materialized order lines.
	UpdateTotals(ctx context.Context, orderID int64, totals model.OrderTotals, couponCode *string) error

	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdatePayment(ctx context.Context, orderID int64, status model.PaymentStatus, paymentRef string) error
}
