package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
)

func seedOrder(s *memStore, status model.OrderStatus) int64 {
	s.nextOrderID++
	id := s.nextOrderID
	s.orders[id] = model.Order{ID: id, Number: "ORD-TEST", Status: status, PaymentStatus: model.PaymentStatusUnpaid}
	return id
}

func TestUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		from model.OrderStatus
		to   string
		ok   bool
	}{
		{model.OrderStatusPending, "PROCESSING", true},
		{model.OrderStatusProcessing, "SHIPPED", true},
		{model.OrderStatusShipped, "COMPLETED", true},
		{model.OrderStatusPending, "CANCELLED", true},
		{model.OrderStatusProcessing, "CANCELLED", true},
		{model.OrderStatusPending, "SHIPPED", false},
		{model.OrderStatusShipped, "CANCELLED", false},
		{model.OrderStatusCompleted, "PROCESSING", false},
		{model.OrderStatusCancelled, "PENDING", false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+tc.to, func(t *testing.T) {
			s := newMemStore()
			id := seedOrder(s, tc.from)

			u := NewFulfillmentUsecase(&memTx{s: s}, nil)
			err := u.UpdateStatus(context.Background(), id, tc.to)

			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, string(s.orders[id].Status))
				return
			}
			he, ok := AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, CodeInvalidRequest, he.Code)
			assert.Equal(t, tc.from, s.orders[id].Status)
		})
	}
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	s := newMemStore()
	id := seedOrder(s, model.OrderStatusProcessing)

	u := NewFulfillmentUsecase(&memTx{s: s}, nil)
	require.NoError(t, u.UpdateStatus(context.Background(), id, "PROCESSING"))
	assert.Equal(t, model.OrderStatusProcessing, s.orders[id].Status)
}

func TestUpdateStatusUnknownOrderAndStatus(t *testing.T) {
	s := newMemStore()
	u := NewFulfillmentUsecase(&memTx{s: s}, nil)

	err := u.UpdateStatus(context.Background(), 42, "PROCESSING")
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, he.Code)

	id := seedOrder(s, model.OrderStatusPending)
	err = u.UpdateStatus(context.Background(), id, "TELEPORTED")
	he, ok = AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, he.Code)
}

func TestCancelRestocksEveryLine(t *testing.T) {
	s := newMemStore()
	vid := int64(3)
	s.putUnit(model.InventoryUnit{ProductID: 1, Title: "Mug", Price: dec("10.00"), Stock: 2, IsActive: true})
	s.putUnit(model.InventoryUnit{ProductID: 2, VariantID: &vid, Title: "Shirt", Price: dec("25.00"), Stock: 0, IsActive: true})

	id := seedOrder(s, model.OrderStatusPending)
	s.orderItems[id] = []model.OrderItem{
		{OrderID: id, ProductID: 1, Quantity: 3, UnitPrice: dec("10.00")},
		{OrderID: id, ProductID: 2, VariantID: &vid, Quantity: 1, UnitPrice: dec("25.00")},
	}

	u := NewFulfillmentUsecase(&memTx{s: s}, nil)
	require.NoError(t, u.UpdateStatus(context.Background(), id, "CANCELLED"))

	assert.Equal(t, model.OrderStatusCancelled, s.orders[id].Status)
	assert.Equal(t, int64(5), s.units[unitKey(1, nil)].Stock)
	assert.Equal(t, int64(1), s.units[unitKey(2, &vid)].Stock)

	require.Len(t, s.adjustments, 2)
	for _, adj := range s.adjustments {
		assert.Equal(t, model.AdjustmentReasonOrderCancelled, adj.Reason)
		require.NotNil(t, adj.OrderID)
		assert.Equal(t, id, *adj.OrderID)
		assert.Positive(t, adj.Delta)
	}
}
