package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	repo "storefront/internal/repository"
)

type txReposGorm struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cartItems  repo.CartItemRepository
	inventory  repo.InventoryRepository
	coupons    repo.CouponRepository
	products   repo.ProductRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) Coupons() repo.CouponRepository       { return r.coupons }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }

type TxManagerGorm struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewTxManagerGorm wraps db in a transaction manager. lockTimeout bounds
// every row-lock wait inside a transaction; zero disables the bound.
func NewTxManagerGorm(db *gorm.DB, lockTimeout time.Duration) *TxManagerGorm {
	return &TxManagerGorm{db: db, lockTimeout: lockTimeout}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tm.lockTimeout > 0 {
			// SET LOCAL scopes the bound to this transaction only.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", tm.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		// Repos are rebuilt on the tx handle so every read and write in fn
		// shares the transaction and its locks.
		r := &txReposGorm{
			orders:     NewOrderGormRepository(tx),
			orderItems: NewOrderItemGormRepository(tx),
			cartItems:  NewCartGormRepository(tx),
			inventory:  NewInventoryGormRepository(tx),
			coupons:    NewCouponGormRepository(tx),
			products:   NewProductGormRepository(tx),
		}
		return fn(r)
	})
}
