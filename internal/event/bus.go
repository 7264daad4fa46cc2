// Package event carries the domain events the storefront emits after a
// transaction has durably committed. Listeners (mail, analytics) hang off
// the bus; delivery is asynchronous and at-least-once per registered
// handler within this process. The external queueing layer is a separate
// collaborator and out of scope here.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain/model"
)

// OrderPlaced is emitted once per successfully committed order.
type OrderPlaced struct {
	Order model.Order
	Items []model.OrderItem
}

type OrderPlacedHandler func(ctx context.Context, ev OrderPlaced)

type Bus struct {
	mu       sync.RWMutex
	handlers []OrderPlacedHandler
	logger   *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

func (b *Bus) SubscribeOrderPlaced(h OrderPlacedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// PublishOrderPlaced dispatches the event to every handler in its own
// goroutine. A panicking handler is logged and never affects the caller
// or other handlers. Callers must only publish after commit.
func (b *Bus) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) {
	b.mu.RLock()
	handlers := make([]OrderPlacedHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		go func(h OrderPlacedHandler) {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("order placed handler panicked",
						zap.String("order_number", ev.Order.Number),
						zap.Any("panic", r),
					)
				}
			}()
			h(ctx, ev)
		}(h)
	}
}
