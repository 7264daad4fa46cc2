package repository

import "context"

// TxRepos is the set of repositories bound to one open transaction.
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	CartItems() CartItemRepository
	Inventory() InventoryRepository
	Coupons() CouponRepository
	Products() ProductRepository
}

// TransactionManager hides begin/commit/rollback from the usecases.
// fn returning an error rolls the whole transaction back.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
