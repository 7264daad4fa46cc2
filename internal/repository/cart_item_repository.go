package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	ListByOwner(ctx context.Context, owner model.OwnerKey) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)

	// UpsertAddQuantity adds addQty to the existing (owner, product, variant)
	// line, or creates the line with the given price snapshot.
	UpsertAddQuantity(ctx context.Context, owner model.OwnerKey, productID int64, variantID *int64, addQty int64, unitPriceSnapshot decimal.Decimal) (model.CartItem, error)

	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	UpdateOwner(ctx context.Context, cartItemID int64, owner model.OwnerKey) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByOwner(ctx context.Context, owner model.OwnerKey) error

	// DeleteByOwnerAndUnit removes the single line for a purchased unit;
	// used by the post-commit cart clear so concurrent additions of other
	// products survive a checkout.
	DeleteByOwnerAndUnit(ctx context.Context, owner model.OwnerKey, productID int64, variantID *int64) error
}
