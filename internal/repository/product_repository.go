package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
	Sort  string
}

type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindVariant(ctx context.Context, variantID int64, productID int64) (model.Variant, error)

	// DisplayUnit returns the sellable view of a product or variant without
	// locking; used for cart display and cart-page totals.
	DisplayUnit(ctx context.Context, productID int64, variantID *int64) (model.InventoryUnit, error)
}
