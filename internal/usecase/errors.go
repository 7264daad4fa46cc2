package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers. busy is the only retryable one.
const (
	CodeInvalidQuantity    = "invalid_quantity"
	CodeInvalidRequest     = "invalid_request"
	CodeProductNotFound    = "product_not_found"
	CodeVariantNotFound    = "variant_not_found"
	CodeInsufficientStock  = "insufficient_stock"
	CodeCouponInapplicable = "coupon_inapplicable"
	CodeBusy               = "busy"
	CodeNotFound           = "not_found"
	CodeInternal           = "internal_error"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{Status: status, Code: code, Message: message}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func errInvalidQuantity() error {
	return NewHTTPError(http.StatusBadRequest, CodeInvalidQuantity, "quantity must be at least 1")
}

func errProductNotFound(detail string) error {
	return NewHTTPError(http.StatusUnprocessableEntity, CodeProductNotFound, detail)
}

func errVariantNotFound(detail string) error {
	return NewHTTPError(http.StatusUnprocessableEntity, CodeVariantNotFound, detail)
}

func errInsufficientStock(title string) error {
	return NewHTTPError(http.StatusUnprocessableEntity, CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %q", title))
}

// errBusy reports a lock-wait timeout. Nothing committed, so resubmitting
// the identical request is safe.
func errBusy() error {
	return NewHTTPError(http.StatusConflict, CodeBusy, "checkout busy, please retry")
}

func errInternal() error {
	return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
}
