package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (model.Coupon, error)

	// IncrementUsage bumps used_count, guarded by the usage limit in the
	// same statement so concurrent claims cannot exceed it. Returns
	// ErrNotFound when the coupon is missing or its limit is exhausted.
	IncrementUsage(ctx context.Context, couponID int64) error
}
