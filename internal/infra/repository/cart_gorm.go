package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CartGormRepository struct {
	db *gorm.DB
}

func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) ListByOwner(ctx context.Context, owner model.OwnerKey) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("owner_key = ?", owner).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, translateErr(err)
	}

	return items, nil
}

func (r *CartGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).
		Where("id = ?", cartItemID).
		First(&item).Error
	if err != nil {
		return model.CartItem{}, translateErr(err)
	}
	return item, nil
}

// UpsertAddQuantity locks the existing line before adding so two concurrent
// adds of the same unit cannot produce duplicate rows.
func (r *CartGormRepository) UpsertAddQuantity(ctx context.Context, owner model.OwnerKey, productID int64, variantID *int64, addQty int64, unitPriceSnapshot decimal.Decimal) (model.CartItem, error) {
	if addQty <= 0 {
		return model.CartItem{}, errors.New("invalid quantity")
	}

	var result model.CartItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.CartItem

		q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_key = ? AND product_id = ?", owner, productID)
		if variantID != nil {
			q = q.Where("variant_id = ?", *variantID)
		} else {
			q = q.Where("variant_id IS NULL")
		}

		err := q.First(&item).Error
		if err == nil {
			item.Quantity += addQty
			res := tx.Model(&model.CartItem{}).
				Where("id = ?", item.ID).
				Update("quantity", item.Quantity)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			result = item
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		newItem := model.CartItem{
			OwnerKey:          owner,
			ProductID:         productID,
			VariantID:         variantID,
			Quantity:          addQty,
			UnitPriceSnapshot: unitPriceSnapshot,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.Create(&newItem).Error; err != nil {
			return err
		}
		result = newItem
		return nil
	})

	if err != nil {
		return model.CartItem{}, translateErr(err)
	}
	return result, nil
}

func (r *CartGormRepository) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("quantity", qty)

	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) UpdateOwner(ctx context.Context, cartItemID int64, owner model.OwnerKey) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("owner_key", owner)

	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID)

	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) DeleteByOwner(ctx context.Context, owner model.OwnerKey) error {
	return translateErr(r.db.WithContext(ctx).
		Where("owner_key = ?", owner).
		Delete(&model.CartItem{}).Error)
}

func (r *CartGormRepository) DeleteByOwnerAndUnit(ctx context.Context, owner model.OwnerKey, productID int64, variantID *int64) error {
	q := r.db.WithContext(ctx).
		Where("owner_key = ? AND product_id = ?", owner, productID)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}

	return translateErr(q.Delete(&model.CartItem{}).Error)
}
