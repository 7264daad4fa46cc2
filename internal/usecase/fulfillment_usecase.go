package usecase

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// FulfillmentUsecase advances an order through its lifecycle. The initial
// PENDING state is produced only by the checkout pipeline; everything
// after that goes through here.
type FulfillmentUsecase struct {
	tx     repo.TransactionManager
	logger *zap.Logger
}

func NewFulfillmentUsecase(tx repo.TransactionManager, logger *zap.Logger) *FulfillmentUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FulfillmentUsecase{tx: tx, logger: logger}
}

// UpdateStatus applies one transition of the order state machine.
// Cancelling restocks every line and records the movement.
func (u *FulfillmentUsecase) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid id")
	}

	next, ok := model.ParseOrderStatus(status)
	if !ok {
		return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
		}
		if err != nil {
			return errInternal()
		}

		if o.Status == next {
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest,
				"cannot transition from "+string(o.Status)+" to "+string(next))
		}

		if next == model.OrderStatusCancelled {
			if err := u.restock(ctx, r, orderID); err != nil {
				return err
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
			}
			return errInternal()
		}

		u.logger.Info("order status updated",
			zap.String("order_number", o.Number),
			zap.String("from", string(o.Status)),
			zap.String("to", string(next)),
		)
		return nil
	})
}

func (u *FulfillmentUsecase) restock(ctx context.Context, r repo.TxRepos, orderID int64) error {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return errInternal()
	}

	for _, it := range items {
		if err := r.Inventory().IncrementStock(ctx, it.ProductID, it.VariantID, it.Quantity); err != nil {
			return errInternal()
		}
		adj := model.InventoryAdjustment{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			OrderID:   &orderID,
			Delta:     it.Quantity,
			Reason:    model.AdjustmentReasonOrderCancelled,
		}
		if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
			return errInternal()
		}
	}
	return nil
}
