package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"storefront/internal/usecase"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type CheckoutRequest struct {
	Items           []usecase.CheckoutLine `json:"items"`
	CouponCode      *string                `json:"coupon_code"`
	PaymentMethod   string                 `json:"payment_method"`
	BillingAddress  string                 `json:"billing_address"`
	ShippingAddress string                 `json:"shipping_address"`
	Country         string                 `json:"country"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/checkout", h.checkout)
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	owner := ownerFromRequest(c)

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// Lock acquisition follows submission order, so every checkout locks
	// units in the same (product, variant) order to keep concurrent
	// checkouts deadlock-free.
	sortLines(req.Items)

	out, err := h.uc.PlaceOrder(c.Request().Context(), usecase.PlaceOrderInput{
		Owner:              owner,
		Lines:              req.Items,
		CouponCode:         req.CouponCode,
		PaymentMethod:      req.PaymentMethod,
		BillingAddress:     req.BillingAddress,
		ShippingAddress:    req.ShippingAddress,
		DestinationCountry: req.Country,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func sortLines(lines []usecase.CheckoutLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		vi, vj := int64(0), int64(0)
		if lines[i].VariantID != nil {
			vi = *lines[i].VariantID
		}
		if lines[j].VariantID != nil {
			vj = *lines[j].VariantID
		}
		return vi < vj
	})
}
