package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"storefront/internal/domain/model"
)

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Confirm(id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
}

type stripeRefundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// StripeGateway implements Gateway on top of Stripe PaymentIntents.
type StripeGateway struct {
	intents  stripeIntentAPI
	refunds  stripeRefundAPI
	currency string
}

// NewStripeGateway builds a gateway for the given secret key. currency is
// the ISO code orders are charged in, e.g. "usd".
func NewStripeGateway(apiKey string, currency string) (*StripeGateway, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("stripe: api key is required")
	}
	if currency == "" {
		currency = "usd"
	}

	sc := client.New(apiKey, nil)
	return &StripeGateway{
		intents:  sc.PaymentIntents,
		refunds:  sc.Refunds,
		currency: currency,
	}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateIntent(ctx context.Context, order model.Order) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(order.Total)),
		Currency: stripe.String(g.currency),
	}
	params.Context = ctx
	params.AddMetadata("order_number", order.Number)

	pi, err := g.intents.New(params)
	if err != nil {
		return Intent{}, err
	}
	return Intent{ClientSecret: pi.ClientSecret, IntentID: pi.ID}, nil
}

func (g *StripeGateway) Charge(ctx context.Context, order model.Order, paymentData map[string]string) (ChargeResult, error) {
	intentID := paymentData["intent_id"]
	if intentID == "" {
		return ChargeResult{}, errors.New("stripe: intent_id is required")
	}

	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx
	if pm := paymentData["payment_method"]; pm != "" {
		params.PaymentMethod = stripe.String(pm)
	}

	pi, err := g.intents.Confirm(intentID, params)
	if err != nil {
		return ChargeResult{}, err
	}
	return ChargeResult{Status: string(pi.Status), TransactionID: pi.ID}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, order model.Order, amount *decimal.Decimal) (RefundResult, error) {
	if order.PaymentRef == "" {
		return RefundResult{}, errors.New("stripe: order has no payment reference")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(order.PaymentRef),
	}
	params.Context = ctx
	if amount != nil {
		params.Amount = stripe.Int64(toMinorUnits(*amount))
	}

	ref, err := g.refunds.New(params)
	if err != nil {
		return RefundResult{}, err
	}
	return RefundResult{Status: string(ref.Status), RefundID: ref.ID}, nil
}

// toMinorUnits converts a 2dp decimal amount to cents.
func toMinorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
