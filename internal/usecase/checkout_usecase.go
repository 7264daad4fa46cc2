package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain/model"
	"storefront/internal/event"
	"storefront/internal/pricing"
	repo "storefront/internal/repository"
)

const orderNumberAttempts = 5

// CheckoutUsecase turns a priced cart snapshot into a durable order. The
// whole pipeline runs in one transaction holding exclusive row locks on
// every inventory unit it touches, which is what prevents overselling
// under concurrent checkouts.
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	cartItems repo.CartItemRepository
	engine    *pricing.Engine
	bus       *event.Bus
	logger    *zap.Logger
	now       func() time.Time
	newNumber func() string
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cartItems repo.CartItemRepository,
	engine *pricing.Engine,
	bus *event.Bus,
	logger *zap.Logger,
) *CheckoutUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutUsecase{
		tx:        tx,
		cartItems: cartItems,
		engine:    engine,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
		newNumber: newOrderNumber,
	}
}

// CheckoutLine is one requested unit, snapshotted from the cart at submit
// time. The pipeline never re-reads the live cart, so concurrent cart
// edits cannot race the order.
type CheckoutLine struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

type PlaceOrderInput struct {
	Owner              model.OwnerKey
	Lines              []CheckoutLine
	CouponCode         *string
	PaymentMethod      string
	BillingAddress     string
	ShippingAddress    string
	DestinationCountry string
}

type OrderLineOutput struct {
	ProductID int64           `json:"product_id"`
	VariantID *int64          `json:"variant_id"`
	Title     string          `json:"title"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	Number        string            `json:"number"`
	UserID        *int64            `json:"user_id"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Discount      decimal.Decimal   `json:"discount"`
	Tax           decimal.Decimal   `json:"tax"`
	Shipping      decimal.Decimal   `json:"shipping"`
	Total         decimal.Decimal   `json:"total"`
	CouponCode    *string           `json:"coupon_code"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderLineOutput `json:"items"`
}

// PlaceOrder executes the order-creation pipeline:
//
//  1. open a transaction and create the order shell (zero totals, PENDING,
//     fresh unique number),
//  2. per line, in submitted order: lock the inventory unit, validate it
//     exists and has stock (or allows backorder), decrement, snapshot an
//     immutable order line at the current effective price,
//  3. recompute the authoritative totals over the materialized lines and
//     persist them,
//  4. commit; only then emit OrderPlaced and clear the purchased cart
//     lines (best-effort).
//
// Any failure before commit rolls everything back: no partial decrements,
// no partial order rows, and the buyer's cart is untouched.
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (OrderOutput, error) {
	if !in.Owner.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid owner")
	}
	if len(in.Lines) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "no items to order")
	}
	for _, l := range in.Lines {
		if l.ProductID <= 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid product_id")
		}
		if l.Quantity < 1 {
			return OrderOutput{}, errInvalidQuantity()
		}
	}
	if strings.TrimSpace(in.ShippingAddress) == "" || strings.TrimSpace(in.BillingAddress) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "billing and shipping addresses are required")
	}

	var out OrderOutput
	var placed event.OrderPlaced

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		number, err := u.uniqueNumber(ctx, r)
		if err != nil {
			return err
		}

		var userID *int64
		if id, ok := in.Owner.UserID(); ok {
			userID = &id
		}

		now := u.now()
		shell := model.Order{
			Number:             number,
			UserID:             userID,
			Status:             model.OrderStatusPending,
			PaymentStatus:      model.PaymentStatusUnpaid,
			PaymentMethod:      in.PaymentMethod,
			BillingAddress:     in.BillingAddress,
			ShippingAddress:    in.ShippingAddress,
			DestinationCountry: in.DestinationCountry,
			Subtotal:           decimal.Zero,
			Discount:           decimal.Zero,
			Tax:                decimal.Zero,
			Shipping:           decimal.Zero,
			Total:              decimal.Zero,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		orderID, err := r.Orders().Create(ctx, shell)
		if err != nil {
			return errInternal()
		}

		orderItems := make([]model.OrderItem, 0, len(in.Lines))
		for _, line := range in.Lines {
			item, err := u.reserveLine(ctx, r, orderID, line)
			if err != nil {
				return err
			}
			orderItems = append(orderItems, item)
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return errInternal()
		}

		coupon, appliedCode, err := u.resolveCoupon(ctx, r, in.CouponCode)
		if err != nil {
			return err
		}

		lines := make([]pricing.Line, 0, len(orderItems))
		for _, it := range orderItems {
			lines = append(lines, pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity})
		}
		totals := u.engine.Compute(lines, coupon, in.DestinationCountry)

		if err := r.Orders().UpdateTotals(ctx, orderID, model.OrderTotals{
			Subtotal: totals.Subtotal,
			Discount: totals.Discount,
			Tax:      totals.Tax,
			Shipping: totals.Shipping,
			Total:    totals.Total,
		}, appliedCode); err != nil {
			return errInternal()
		}

		order := shell
		order.ID = orderID
		order.Subtotal = totals.Subtotal
		order.Discount = totals.Discount
		order.Tax = totals.Tax
		order.Shipping = totals.Shipping
		order.Total = totals.Total
		order.CouponCode = appliedCode

		placed = event.OrderPlaced{Order: order, Items: orderItems}
		out = toOrderOutput(order, orderItems)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	// Post-commit side effects. Neither may fail the order: it already
	// exists durably.
	u.bus.PublishOrderPlaced(ctx, placed)
	u.clearPurchasedLines(ctx, in.Owner, in.Lines)

	return out, nil
}

// reserveLine locks one inventory unit, enforces the stock policy and
// decrements. With backorder allowed the decrement proceeds even past
// zero; the oversold portion is recorded as an adjustment so fulfillment
// can track the backorder.
func (u *CheckoutUsecase) reserveLine(ctx context.Context, r repo.TxRepos, orderID int64, line CheckoutLine) (model.OrderItem, error) {
	var unit model.InventoryUnit
	var err error

	if line.VariantID != nil {
		unit, err = r.Inventory().LockVariant(ctx, *line.VariantID, line.ProductID)
	} else {
		unit, err = r.Inventory().LockProduct(ctx, line.ProductID)
	}
	if errors.Is(err, repo.ErrLockTimeout) {
		return model.OrderItem{}, errBusy()
	}
	if errors.Is(err, repo.ErrNotFound) {
		if line.VariantID != nil {
			return model.OrderItem{}, errVariantNotFound("variant does not exist")
		}
		return model.OrderItem{}, errProductNotFound("product does not exist")
	}
	if err != nil {
		return model.OrderItem{}, errInternal()
	}
	if !unit.IsActive {
		return model.OrderItem{}, errProductNotFound(unit.Title + " is no longer available")
	}

	if unit.Stock < line.Quantity && !unit.BackorderAllowed {
		return model.OrderItem{}, errInsufficientStock(unit.Title)
	}

	if err := r.Inventory().DecrementStock(ctx, line.ProductID, line.VariantID, line.Quantity); err != nil {
		return model.OrderItem{}, errInternal()
	}

	// At most the whole line can be backordered; stock already negative
	// from earlier backorders must not inflate the delta.
	if oversold := min(line.Quantity-unit.Stock, line.Quantity); oversold > 0 {
		adj := model.InventoryAdjustment{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			OrderID:   &orderID,
			Delta:     -oversold,
			Reason:    model.AdjustmentReasonBackorderOversell,
		}
		if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
			return model.OrderItem{}, errInternal()
		}
	}

	unitPrice := unit.EffectivePrice()
	return model.OrderItem{
		OrderID:        orderID,
		ProductID:      line.ProductID,
		VariantID:      line.VariantID,
		Title:          unit.Title,
		SKU:            unit.SKU,
		ImagePath:      unit.ImagePath,
		VariantOptions: unit.VariantOptions,
		UnitPrice:      unitPrice,
		Quantity:       line.Quantity,
		LineTotal:      unitPrice.Mul(decimal.NewFromInt(line.Quantity)).Round(2),
		CreatedAt:      u.now(),
	}, nil
}

// uniqueNumber generates an order number, re-checking uniqueness before
// accepting. Collisions are vanishingly rare but the generator must not
// assume so.
func (u *CheckoutUsecase) uniqueNumber(ctx context.Context, r repo.TxRepos) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		n := u.newNumber()
		exists, err := r.Orders().ExistsByNumber(ctx, n)
		if err != nil {
			return "", errInternal()
		}
		if !exists {
			return n, nil
		}
	}
	return "", errInternal()
}

// resolveCoupon loads the coupon for checkout and claims one usage slot.
// A missing or inapplicable coupon is not a checkout failure: it simply
// contributes no discount. Apply-time validation already told the buyer
// explicitly. The claim is a conditional increment, so two checkouts
// racing for the last slot cannot both win; the loser's coupon is treated
// as inapplicable. A later rollback releases the slot with the rest of
// the transaction.
func (u *CheckoutUsecase) resolveCoupon(ctx context.Context, r repo.TxRepos, code *string) (*model.Coupon, *string, error) {
	if code == nil || strings.TrimSpace(*code) == "" {
		return nil, nil, nil
	}

	c, err := r.Coupons().FindByCode(ctx, strings.TrimSpace(*code))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errInternal()
	}
	if !c.ApplicableAt(u.now()) {
		return nil, nil, nil
	}

	err = r.Coupons().IncrementUsage(ctx, c.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errInternal()
	}
	return &c, &c.Code, nil
}

// clearPurchasedLines removes only the units that were just bought, so a
// line added concurrently during checkout survives.
func (u *CheckoutUsecase) clearPurchasedLines(ctx context.Context, owner model.OwnerKey, lines []CheckoutLine) {
	for _, line := range lines {
		if err := u.cartItems.DeleteByOwnerAndUnit(ctx, owner, line.ProductID, line.VariantID); err != nil {
			u.logger.Warn("failed to clear purchased cart line",
				zap.String("owner", string(owner)),
				zap.Int64("product_id", line.ProductID),
				zap.Error(err),
			)
		}
	}
}

func newOrderNumber() string {
	return "ORD-" + ulid.Make().String()
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderLineOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderLineOutput{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Title:     it.Title,
			SKU:       it.SKU,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		Number:        o.Number,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		Tax:           o.Tax,
		Shipping:      o.Shipping,
		Total:         o.Total,
		CouponCode:    o.CouponCode,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
