package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CouponGormRepository struct {
	db *gorm.DB
}

func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

func (r *CouponGormRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon

	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&c).Error
	if err != nil {
		return model.Coupon{}, translateErr(err)
	}
	return c, nil
}

// IncrementUsage claims a usage slot with a conditional update. The limit
// check and the increment execute as one statement, so two transactions
// racing for the last slot cannot both succeed.
func (r *CouponGormRepository) IncrementUsage(ctx context.Context, couponID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", couponID).
		Update("used_count", gorm.Expr("used_count + 1"))

	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
