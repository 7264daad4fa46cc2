package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// memStore is an in-memory stand-in for the database used by the checkout
// and fulfillment tests. memTx serializes transactions with a mutex (the
// moral equivalent of every checkout locking the same rows) and restores a
// snapshot when fn fails, which mirrors rollback semantics.
type memStore struct {
	mu          sync.Mutex
	units       map[string]model.InventoryUnit
	orders      map[int64]model.Order
	orderItems  map[int64][]model.OrderItem
	cartItems   map[int64]model.CartItem
	coupons     map[string]model.Coupon
	adjustments []model.InventoryAdjustment
	nextOrderID int64
	nextCartID  int64

	// lockErr, when set, is returned by every Lock* call.
	lockErr error
	// displayErr, when set, is returned by DisplayUnit.
	displayErr error
}

func newMemStore() *memStore {
	return &memStore{
		units:      map[string]model.InventoryUnit{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64][]model.OrderItem{},
		cartItems:  map[int64]model.CartItem{},
		coupons:    map[string]model.Coupon{},
	}
}

func unitKey(productID int64, variantID *int64) string {
	if variantID == nil {
		return fmt.Sprintf("p%d", productID)
	}
	return fmt.Sprintf("p%d/v%d", productID, *variantID)
}

func (s *memStore) putUnit(u model.InventoryUnit) {
	s.units[unitKey(u.ProductID, u.VariantID)] = u
}

func (s *memStore) putCartItem(item model.CartItem) model.CartItem {
	s.nextCartID++
	item.ID = s.nextCartID
	s.cartItems[item.ID] = item
	return item
}

type memSnapshot struct {
	units       map[string]model.InventoryUnit
	orders      map[int64]model.Order
	orderItems  map[int64][]model.OrderItem
	cartItems   map[int64]model.CartItem
	coupons     map[string]model.Coupon
	adjustments []model.InventoryAdjustment
	nextOrderID int64
	nextCartID  int64
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		units:       map[string]model.InventoryUnit{},
		orders:      map[int64]model.Order{},
		orderItems:  map[int64][]model.OrderItem{},
		cartItems:   map[int64]model.CartItem{},
		coupons:     map[string]model.Coupon{},
		adjustments: append([]model.InventoryAdjustment{}, s.adjustments...),
		nextOrderID: s.nextOrderID,
		nextCartID:  s.nextCartID,
	}
	for k, v := range s.units {
		snap.units[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.orderItems {
		snap.orderItems[k] = append([]model.OrderItem{}, v...)
	}
	for k, v := range s.cartItems {
		snap.cartItems[k] = v
	}
	for k, v := range s.coupons {
		snap.coupons[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.units = snap.units
	s.orders = snap.orders
	s.orderItems = snap.orderItems
	s.cartItems = snap.cartItems
	s.coupons = snap.coupons
	s.adjustments = snap.adjustments
	s.nextOrderID = snap.nextOrderID
	s.nextCartID = snap.nextCartID
}

type memTx struct {
	s *memStore
}

func (t *memTx) WithinTx(_ context.Context, fn func(r repo.TxRepos) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	snap := t.s.snapshot()
	if err := fn(&memRepos{s: t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// memRepos serves all repositories over the store. It runs inside the
// transaction mutex, so no further locking here.
type memRepos struct {
	s *memStore
}

func (r *memRepos) Orders() repo.OrderRepository         { return (*memOrders)(r) }
func (r *memRepos) OrderItems() repo.OrderItemRepository { return (*memOrderItems)(r) }
func (r *memRepos) CartItems() repo.CartItemRepository   { return &memCartItems{s: r.s} }
func (r *memRepos) Inventory() repo.InventoryRepository  { return (*memInventory)(r) }
func (r *memRepos) Coupons() repo.CouponRepository       { return (*memCoupons)(r) }
func (r *memRepos) Products() repo.ProductRepository     { return (*memProducts)(r) }

type memOrders memRepos

func (r *memOrders) Create(_ context.Context, order model.Order) (int64, error) {
	r.s.nextOrderID++
	order.ID = r.s.nextOrderID
	r.s.orders[order.ID] = order
	return order.ID, nil
}

func (r *memOrders) FindByID(_ context.Context, orderID int64) (model.Order, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *memOrders) FindByNumber(_ context.Context, number string) (model.Order, error) {
	for _, o := range r.s.orders {
		if o.Number == number {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r *memOrders) ExistsByNumber(_ context.Context, number string) (bool, error) {
	for _, o := range r.s.orders {
		if o.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrders) ListByUserID(_ context.Context, userID int64, _ int, _ int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.s.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrders) UpdateTotals(_ context.Context, orderID int64, totals model.OrderTotals, couponCode *string) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Subtotal = totals.Subtotal
	o.Discount = totals.Discount
	o.Tax = totals.Tax
	o.Shipping = totals.Shipping
	o.Total = totals.Total
	o.CouponCode = couponCode
	r.s.orders[orderID] = o
	return nil
}

func (r *memOrders) UpdateStatus(_ context.Context, orderID int64, status model.OrderStatus) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	r.s.orders[orderID] = o
	return nil
}

func (r *memOrders) UpdatePayment(_ context.Context, orderID int64, status model.PaymentStatus, ref string) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.PaymentStatus = status
	o.PaymentRef = ref
	r.s.orders[orderID] = o
	return nil
}

type memOrderItems memRepos

func (r *memOrderItems) CreateBulk(_ context.Context, orderID int64, items []model.OrderItem) error {
	rows := make([]model.OrderItem, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].OrderID = orderID
	}
	r.s.orderItems[orderID] = append(r.s.orderItems[orderID], rows...)
	return nil
}

func (r *memOrderItems) ListByOrderID(_ context.Context, orderID int64) ([]model.OrderItem, error) {
	return append([]model.OrderItem{}, r.s.orderItems[orderID]...), nil
}

type memInventory memRepos

func (r *memInventory) LockProduct(_ context.Context, productID int64) (model.InventoryUnit, error) {
	if r.s.lockErr != nil {
		return model.InventoryUnit{}, r.s.lockErr
	}
	u, ok := r.s.units[unitKey(productID, nil)]
	if !ok {
		return model.InventoryUnit{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *memInventory) LockVariant(_ context.Context, variantID int64, productID int64) (model.InventoryUnit, error) {
	if r.s.lockErr != nil {
		return model.InventoryUnit{}, r.s.lockErr
	}
	u, ok := r.s.units[unitKey(productID, &variantID)]
	if !ok {
		return model.InventoryUnit{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *memInventory) DecrementStock(_ context.Context, productID int64, variantID *int64, qty int64) error {
	key := unitKey(productID, variantID)
	u, ok := r.s.units[key]
	if !ok {
		return repo.ErrNotFound
	}
	u.Stock -= qty
	r.s.units[key] = u
	return nil
}

func (r *memInventory) IncrementStock(_ context.Context, productID int64, variantID *int64, qty int64) error {
	key := unitKey(productID, variantID)
	u, ok := r.s.units[key]
	if !ok {
		return repo.ErrNotFound
	}
	u.Stock += qty
	r.s.units[key] = u
	return nil
}

func (r *memInventory) CreateAdjustment(_ context.Context, adj model.InventoryAdjustment) error {
	r.s.adjustments = append(r.s.adjustments, adj)
	return nil
}

type memCoupons memRepos

func (r *memCoupons) FindByCode(_ context.Context, code string) (model.Coupon, error) {
	c, ok := r.s.coupons[code]
	if !ok {
		return model.Coupon{}, repo.ErrNotFound
	}
	return c, nil
}

func (r *memCoupons) IncrementUsage(_ context.Context, couponID int64) error {
	for code, c := range r.s.coupons {
		if c.ID == couponID {
			if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
				return repo.ErrNotFound
			}
			c.UsedCount++
			r.s.coupons[code] = c
			return nil
		}
	}
	return repo.ErrNotFound
}

type memProducts memRepos

func (r *memProducts) ListPublic(context.Context, repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in these tests")
}

func (r *memProducts) FindByID(context.Context, int64) (model.Product, error) {
	panic("not used in these tests")
}

func (r *memProducts) FindVariant(context.Context, int64, int64) (model.Variant, error) {
	panic("not used in these tests")
}

func (r *memProducts) DisplayUnit(_ context.Context, productID int64, variantID *int64) (model.InventoryUnit, error) {
	if r.s.displayErr != nil {
		return model.InventoryUnit{}, r.s.displayErr
	}
	u, ok := r.s.units[unitKey(productID, variantID)]
	if !ok {
		return model.InventoryUnit{}, repo.ErrNotFound
	}
	return u, nil
}

// memCartItems is safe both inside a transaction (mutex already held by
// memTx) and standalone, so tests hand it to the post-commit cart clear.
type memCartItems struct {
	s          *memStore
	standalone bool
}

func (r *memCartItems) lock() func() {
	if !r.standalone {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memCartItems) ListByOwner(_ context.Context, owner model.OwnerKey) ([]model.CartItem, error) {
	defer r.lock()()
	var out []model.CartItem
	for _, it := range r.s.cartItems {
		if it.OwnerKey == owner {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memCartItems) FindByID(_ context.Context, id int64) (model.CartItem, error) {
	defer r.lock()()
	it, ok := r.s.cartItems[id]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (r *memCartItems) UpsertAddQuantity(_ context.Context, owner model.OwnerKey, productID int64, variantID *int64, addQty int64, snapshot decimal.Decimal) (model.CartItem, error) {
	defer r.lock()()
	for id, it := range r.s.cartItems {
		if it.OwnerKey == owner && it.SameUnit(productID, variantID) {
			it.Quantity += addQty
			r.s.cartItems[id] = it
			return it, nil
		}
	}
	return r.s.putCartItem(model.CartItem{
		OwnerKey:          owner,
		ProductID:         productID,
		VariantID:         variantID,
		Quantity:          addQty,
		UnitPriceSnapshot: snapshot,
	}), nil
}

func (r *memCartItems) UpdateQuantity(_ context.Context, id int64, qty int64) error {
	defer r.lock()()
	it, ok := r.s.cartItems[id]
	if !ok {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	r.s.cartItems[id] = it
	return nil
}

func (r *memCartItems) UpdateOwner(_ context.Context, id int64, owner model.OwnerKey) error {
	defer r.lock()()
	it, ok := r.s.cartItems[id]
	if !ok {
		return repo.ErrNotFound
	}
	it.OwnerKey = owner
	r.s.cartItems[id] = it
	return nil
}

func (r *memCartItems) DeleteByID(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.s.cartItems[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.cartItems, id)
	return nil
}

func (r *memCartItems) DeleteByOwner(_ context.Context, owner model.OwnerKey) error {
	defer r.lock()()
	for id, it := range r.s.cartItems {
		if it.OwnerKey == owner {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}

func (r *memCartItems) DeleteByOwnerAndUnit(_ context.Context, owner model.OwnerKey, productID int64, variantID *int64) error {
	defer r.lock()()
	for id, it := range r.s.cartItems {
		if it.OwnerKey == owner && it.SameUnit(productID, variantID) {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}
