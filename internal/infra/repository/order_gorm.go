package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, translateErr(err)
	}
	return order.ID, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order

	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		return model.Order{}, translateErr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByNumber(ctx context.Context, number string) (model.Order, error) {
	var o model.Order

	err := r.db.WithContext(ctx).
		Where("number = ?", number).
		First(&o).Error
	if err != nil {
		return model.Order{}, translateErr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, translateErr(err)
	}
	return count > 0, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("user_id = ?", userID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	err := q.Order("id desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, translateErr(err)
	}

	return orders, total, nil
}

func (r *OrderGormRepository) UpdateTotals(ctx context.Context, orderID int64, totals model.OrderTotals, couponCode *string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"subtotal":    totals.Subtotal,
			"discount":    totals.Discount,
			"tax":         totals.Tax,
			"shipping":    totals.Shipping,
			"total":       totals.Total,
			"coupon_code": couponCode,
		})

	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) UpdatePayment(ctx context.Context, orderID int64, status model.PaymentStatus, paymentRef string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_status": status,
			"payment_ref":    paymentRef,
		})

	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
