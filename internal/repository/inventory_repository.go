package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// InventoryRepository mutates stock only under row locks held by the
// surrounding transaction.
type InventoryRepository interface {
	// LockProduct acquires an exclusive row lock on the product and returns
	// its sellable view. Concurrent transactions locking the same product
	// serialize; the second sees the first's committed stock.
	// Returns ErrLockTimeout when the lock wait bound is exceeded.
	LockProduct(ctx context.Context, productID int64) (model.InventoryUnit, error)

	// LockVariant does the same for a variant of a product.
	LockVariant(ctx context.Context, variantID int64, productID int64) (model.InventoryUnit, error)

	// DecrementStock subtracts qty from the unit's stock. Callers must hold
	// the unit's lock and have decided the backorder policy already; the
	// decrement itself is unconditional and may drive stock negative.
	DecrementStock(ctx context.Context, productID int64, variantID *int64, qty int64) error

	// IncrementStock returns stock, e.g. when a cancelled order restocks.
	IncrementStock(ctx context.Context, productID int64, variantID *int64, qty int64) error

	CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
}
