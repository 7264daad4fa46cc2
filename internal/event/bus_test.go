package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain/model"
)

func TestPublishDeliversToAllHandlers(t *testing.T) {
	bus := NewBus(nil)

	first := make(chan OrderPlaced, 1)
	second := make(chan OrderPlaced, 1)
	bus.SubscribeOrderPlaced(func(_ context.Context, ev OrderPlaced) { first <- ev })
	bus.SubscribeOrderPlaced(func(_ context.Context, ev OrderPlaced) { second <- ev })

	ev := OrderPlaced{
		Order: model.Order{Number: "ORD-1"},
		Items: []model.OrderItem{{ProductID: 1, Quantity: 2}},
	}
	bus.PublishOrderPlaced(context.Background(), ev)

	for _, ch := range []chan OrderPlaced{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, "ORD-1", got.Order.Number)
			assert.Len(t, got.Items, 1)
		case <-time.After(time.Second):
			t.Fatal("handler never received the event")
		}
	}
}

func TestPublishWithoutHandlersIsSafe(t *testing.T) {
	bus := NewBus(nil)
	bus.PublishOrderPlaced(context.Background(), OrderPlaced{Order: model.Order{Number: "ORD-2"}})
}

func TestPanickingHandlerDoesNotStarveOthers(t *testing.T) {
	bus := NewBus(nil)

	done := make(chan struct{}, 1)
	bus.SubscribeOrderPlaced(func(context.Context, OrderPlaced) { panic("boom") })
	bus.SubscribeOrderPlaced(func(context.Context, OrderPlaced) { done <- struct{}{} })

	bus.PublishOrderPlaced(context.Background(), OrderPlaced{Order: model.Order{Number: "ORD-3"}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("surviving handler never ran")
	}
}
