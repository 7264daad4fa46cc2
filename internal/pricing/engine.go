// Package pricing computes cart and order totals. It is pure: no
// persistence and no ambient session state; the coupon arrives as an
// explicit argument.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/model"
)

var hundred = decimal.NewFromInt(100)

// Line is one priced cart or order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Totals is the full money breakdown. Every field is rounded to 2 decimal
// places; unrounded fractions are never carried between steps.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// TaxFunc resolves the tax for a taxable amount shipped to a country.
// The real rate lookup lives outside this module.
type TaxFunc func(taxable decimal.Decimal, destCountry string) decimal.Decimal

// ShippingFunc resolves the shipping cost for a cart.
type ShippingFunc func(subtotal decimal.Decimal, destCountry string) decimal.Decimal

type Engine struct {
	tax      TaxFunc
	shipping ShippingFunc
	now      func() time.Time
}

func NewEngine(tax TaxFunc, shipping ShippingFunc) *Engine {
	if tax == nil {
		tax = func(decimal.Decimal, string) decimal.Decimal { return decimal.Zero }
	}
	if shipping == nil {
		shipping = func(decimal.Decimal, string) decimal.Decimal { return decimal.Zero }
	}
	return &Engine{tax: tax, shipping: shipping, now: time.Now}
}

// WithClock overrides the applicability clock; used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Compute produces the totals for the given lines and optional coupon.
// An inapplicable coupon contributes zero discount; it is never an error
// here. Deterministic: the same inputs always yield identical totals.
func (e *Engine) Compute(lines []Line, coupon *model.Coupon, destCountry string) Totals {
	zero := Totals{
		Subtotal: round2(decimal.Zero),
		Discount: round2(decimal.Zero),
		Tax:      round2(decimal.Zero),
		Shipping: round2(decimal.Zero),
		Total:    round2(decimal.Zero),
	}
	if len(lines) == 0 {
		return zero
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = round2(subtotal.Add(round2(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))))
	}

	discount := round2(e.discount(subtotal, coupon))
	taxable := round2(subtotal.Sub(discount))
	tax := round2(e.tax(taxable, destCountry))
	shipping := round2(e.shipping(subtotal, destCountry))
	total := round2(taxable.Add(tax).Add(shipping))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}
}

func (e *Engine) discount(subtotal decimal.Decimal, coupon *model.Coupon) decimal.Decimal {
	if coupon == nil || !coupon.ApplicableAt(e.now()) {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch coupon.Type {
	case model.CouponTypeFixed:
		d = coupon.Value
	case model.CouponTypePercent:
		d = round2(subtotal.Mul(coupon.Value).Div(hundred))
		if coupon.MaxDiscount != nil && d.GreaterThan(*coupon.MaxDiscount) {
			d = *coupon.MaxDiscount
		}
	default:
		return decimal.Zero
	}

	// A discount can never exceed the subtotal.
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
