package usecase

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/domain/model"
	"storefront/internal/payment"
	repo "storefront/internal/repository"
)

// OrderUsecase reads committed orders and sequences payment capture.
// It never mutates order lines or totals; those are write-once.
type OrderUsecase struct {
	tx      repo.TransactionManager
	gateway payment.Gateway
	logger  *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, gateway payment.Gateway, logger *zap.Logger) *OrderUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderUsecase{tx: tx, gateway: gateway, logger: logger}
}

func (u *OrderUsecase) ListByUser(ctx context.Context, userID int64, page int, limit int) ([]OrderOutput, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid user")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var outs []OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return errInternal()
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return errInternal()
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outs, nil
}

// GetByNumber returns one order. A caller asking for someone else's order
// gets "not found" rather than a hint that it exists.
func (u *OrderUsecase) GetByNumber(ctx context.Context, owner model.OwnerKey, number string) (OrderOutput, error) {
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByNumber(ctx, number)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
		}
		if err != nil {
			return errInternal()
		}

		if o.UserID != nil {
			uid, ok := owner.UserID()
			if !ok || uid != *o.UserID {
				return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
			}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return errInternal()
		}

		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// CreatePaymentIntent asks the gateway for a client secret the UI can
// confirm. The order must exist and be unpaid.
func (u *OrderUsecase) CreatePaymentIntent(ctx context.Context, owner model.OwnerKey, number string) (payment.Intent, error) {
	order, err := u.loadPayable(ctx, owner, number)
	if err != nil {
		return payment.Intent{}, err
	}

	intent, err := u.gateway.CreateIntent(ctx, order)
	if err != nil {
		u.logger.Error("payment intent creation failed",
			zap.String("order_number", number),
			zap.String("gateway", u.gateway.Name()),
			zap.Error(err),
		)
		return payment.Intent{}, NewHTTPError(http.StatusBadGateway, CodeInternal, "payment gateway error")
	}
	return intent, nil
}

// CapturePayment confirms the charge and records the result on the order.
func (u *OrderUsecase) CapturePayment(ctx context.Context, owner model.OwnerKey, number string, paymentData map[string]string) (payment.ChargeResult, error) {
	order, err := u.loadPayable(ctx, owner, number)
	if err != nil {
		return payment.ChargeResult{}, err
	}

	result, err := u.gateway.Charge(ctx, order, paymentData)
	if err != nil {
		u.logger.Error("payment capture failed",
			zap.String("order_number", number),
			zap.String("gateway", u.gateway.Name()),
			zap.Error(err),
		)
		return payment.ChargeResult{}, NewHTTPError(http.StatusBadGateway, CodeInternal, "payment gateway error")
	}

	if result.Status == "succeeded" {
		err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			return r.Orders().UpdatePayment(ctx, order.ID, model.PaymentStatusPaid, result.TransactionID)
		})
		if err != nil {
			// The charge went through; surface the order as paid anyway and
			// leave reconciliation to the gateway webhook.
			u.logger.Error("failed to record payment",
				zap.String("order_number", number),
				zap.Error(err),
			)
		}
	}

	return result, nil
}

func (u *OrderUsecase) loadPayable(ctx context.Context, owner model.OwnerKey, number string) (model.Order, error) {
	var order model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByNumber(ctx, number)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
		}
		if err != nil {
			return errInternal()
		}

		if o.UserID != nil {
			uid, ok := owner.UserID()
			if !ok || uid != *o.UserID {
				return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
			}
		}
		if o.PaymentStatus != model.PaymentStatusUnpaid {
			return NewHTTPError(http.StatusConflict, CodeInvalidRequest, "order is already paid")
		}

		order = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}
