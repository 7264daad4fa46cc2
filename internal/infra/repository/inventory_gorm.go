package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// LockProduct takes SELECT ... FOR UPDATE on the product row. The lock is
// held until the surrounding transaction commits or rolls back.
func (r *InventoryGormRepository) LockProduct(ctx context.Context, productID int64) (model.InventoryUnit, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", productID).
		First(&p).Error
	if err != nil {
		return model.InventoryUnit{}, translateErr(err)
	}

	return productUnit(p), nil
}

func (r *InventoryGormRepository) LockVariant(ctx context.Context, variantID int64, productID int64) (model.InventoryUnit, error) {
	var v model.Variant

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&v).Error
	if err != nil {
		return model.InventoryUnit{}, translateErr(err)
	}

	// Display data comes from the parent product; no lock needed there.
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error; err != nil {
		return model.InventoryUnit{}, translateErr(err)
	}

	return variantUnit(p, v), nil
}

func (r *InventoryGormRepository) DecrementStock(ctx context.Context, productID int64, variantID *int64, qty int64) error {
	return r.applyStockDelta(ctx, productID, variantID, -qty)
}

func (r *InventoryGormRepository) IncrementStock(ctx context.Context, productID int64, variantID *int64, qty int64) error {
	return r.applyStockDelta(ctx, productID, variantID, qty)
}

func (r *InventoryGormRepository) applyStockDelta(ctx context.Context, productID int64, variantID *int64, delta int64) error {
	q := r.db.WithContext(ctx)

	var res *gorm.DB
	if variantID != nil {
		res = q.Model(&model.Variant{}).
			Where("id = ? AND product_id = ?", *variantID, productID).
			Update("stock", gorm.Expr("stock + ?", delta))
	} else {
		res = q.Model(&model.Product{}).
			Where("id = ?", productID).
			Update("stock", gorm.Expr("stock + ?", delta))
	}

	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

func productUnit(p model.Product) model.InventoryUnit {
	return model.InventoryUnit{
		ProductID:        p.ID,
		Title:            p.Name,
		SKU:              p.SKU,
		ImagePath:        p.ImagePath,
		Price:            p.Price,
		SalePrice:        p.SalePrice,
		Stock:            p.Stock,
		BackorderAllowed: p.BackorderAllowed,
		IsActive:         p.IsActive,
	}
}

func variantUnit(p model.Product, v model.Variant) model.InventoryUnit {
	vid := v.ID
	return model.InventoryUnit{
		ProductID:        p.ID,
		VariantID:        &vid,
		Title:            p.Name,
		SKU:              v.SKU,
		ImagePath:        p.ImagePath,
		VariantOptions:   v.Options,
		Price:            v.Price,
		SalePrice:        v.SalePrice,
		Stock:            v.Stock,
		BackorderAllowed: v.BackorderAllowed,
		IsActive:         p.IsActive && v.IsActive,
	}
}
