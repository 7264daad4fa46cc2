package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("is_active = ?", true)

	if s := strings.TrimSpace(q.Q); s != "" {
		query = query.Where("name ILIKE ?", "%"+s+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	switch q.Sort {
	case "price_asc":
		query = query.Order("price asc")
	case "price_desc":
		query = query.Order("price desc")
	default:
		query = query.Order("id desc")
	}

	err := query.
		Preload("Variants", "is_active = ?", true).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, translateErr(err)
	}

	return products, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return model.Product{}, translateErr(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindVariant(ctx context.Context, variantID int64, productID int64) (model.Variant, error) {
	var v model.Variant

	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&v).Error
	if err != nil {
		return model.Variant{}, translateErr(err)
	}
	return v, nil
}

func (r *ProductGormRepository) DisplayUnit(ctx context.Context, productID int64, variantID *int64) (model.InventoryUnit, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error; err != nil {
		return model.InventoryUnit{}, translateErr(err)
	}

	if variantID == nil {
		return productUnit(p), nil
	}

	var v model.Variant
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", *variantID, productID).
		First(&v).Error
	if err != nil {
		return model.InventoryUnit{}, translateErr(err)
	}

	return variantUnit(p, v), nil
}
