package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/payment"
)

type stubGateway struct {
	chargeResult payment.ChargeResult
	chargeErr    error
	charged      []model.Order
}

func (g *stubGateway) CreateIntent(_ context.Context, o model.Order) (payment.Intent, error) {
	return payment.Intent{ClientSecret: "cs_test", IntentID: "pi_" + o.Number}, nil
}

func (g *stubGateway) Charge(_ context.Context, o model.Order, _ map[string]string) (payment.ChargeResult, error) {
	g.charged = append(g.charged, o)
	return g.chargeResult, g.chargeErr
}

func (g *stubGateway) Refund(context.Context, model.Order, *decimal.Decimal) (payment.RefundResult, error) {
	return payment.RefundResult{}, errors.New("not implemented")
}

func (g *stubGateway) Name() string { return "stub" }

func seedUserOrder(s *memStore, userID int64, number string) int64 {
	s.nextOrderID++
	id := s.nextOrderID
	s.orders[id] = model.Order{
		ID: id, Number: number, UserID: &userID,
		Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusUnpaid,
		Total: dec("64.97"),
	}
	return id
}

func TestGetByNumberHidesForeignOrders(t *testing.T) {
	s := newMemStore()
	seedUserOrder(s, 1, "ORD-A")

	u := NewOrderUsecase(&memTx{s: s}, &stubGateway{}, nil)

	out, err := u.GetByNumber(context.Background(), model.UserOwner(1), "ORD-A")
	require.NoError(t, err)
	assert.Equal(t, "ORD-A", out.Number)

	_, err = u.GetByNumber(context.Background(), model.UserOwner(2), "ORD-A")
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, he.Code)

	_, err = u.GetByNumber(context.Background(), model.SessionOwner("sess"), "ORD-A")
	he, ok = AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, he.Code)
}

func TestCapturePaymentMarksOrderPaid(t *testing.T) {
	s := newMemStore()
	id := seedUserOrder(s, 1, "ORD-A")

	gw := &stubGateway{chargeResult: payment.ChargeResult{Status: "succeeded", TransactionID: "txn_1"}}
	u := NewOrderUsecase(&memTx{s: s}, gw, nil)

	result, err := u.CapturePayment(context.Background(), model.UserOwner(1), "ORD-A", map[string]string{"intent_id": "pi_1"})
	require.NoError(t, err)
	assert.Equal(t, "succeeded", result.Status)

	assert.Equal(t, model.PaymentStatusPaid, s.orders[id].PaymentStatus)
	assert.Equal(t, "txn_1", s.orders[id].PaymentRef)
	require.Len(t, gw.charged, 1)
	assert.True(t, gw.charged[0].Total.Equal(dec("64.97")))
}

func TestCapturePaymentRejectsAlreadyPaid(t *testing.T) {
	s := newMemStore()
	id := seedUserOrder(s, 1, "ORD-A")
	o := s.orders[id]
	o.PaymentStatus = model.PaymentStatusPaid
	s.orders[id] = o

	gw := &stubGateway{}
	u := NewOrderUsecase(&memTx{s: s}, gw, nil)

	_, err := u.CapturePayment(context.Background(), model.UserOwner(1), "ORD-A", nil)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Empty(t, gw.charged)
}

func TestCapturePaymentGatewayFailure(t *testing.T) {
	s := newMemStore()
	id := seedUserOrder(s, 1, "ORD-A")

	gw := &stubGateway{chargeErr: errors.New("card declined upstream")}
	u := NewOrderUsecase(&memTx{s: s}, gw, nil)

	_, err := u.CapturePayment(context.Background(), model.UserOwner(1), "ORD-A", nil)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, he.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, s.orders[id].PaymentStatus)
}

func TestListByUserReturnsOwnOrdersWithItems(t *testing.T) {
	s := newMemStore()
	mine := seedUserOrder(s, 1, "ORD-MINE")
	seedUserOrder(s, 2, "ORD-THEIRS")
	s.orderItems[mine] = []model.OrderItem{{OrderID: mine, ProductID: 1, Quantity: 2, UnitPrice: dec("10.00")}}

	u := NewOrderUsecase(&memTx{s: s}, &stubGateway{}, nil)
	out, err := u.ListByUser(context.Background(), 1, 1, 50)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "ORD-MINE", out[0].Number)
	require.Len(t, out[0].Items, 1)
	assert.EqualValues(t, 2, out[0].Items[0].Quantity)
}
