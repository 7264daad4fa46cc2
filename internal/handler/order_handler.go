package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/usecase"
)

type OrderHandler struct {
	uc  *usecase.OrderUsecase
	ful *usecase.FulfillmentUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, ful *usecase.FulfillmentUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, ful: ful}
}

type PayRequest struct {
	IntentID      string `json:"intent_id"`
	PaymentMethod string `json:"payment_method"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/orders", h.listMine)
	e.GET("/orders/:number", h.getByNumber)
	e.POST("/orders/:number/payment-intent", h.createIntent)
	e.POST("/orders/:number/pay", h.pay)
	e.PATCH("/orders/:id/status", h.updateStatus)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	owner := ownerFromRequest(c)
	userID, ok := owner.UserID()
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	out, err := h.uc.ListByUser(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) getByNumber(c echo.Context) error {
	owner := ownerFromRequest(c)

	out, err := h.uc.GetByNumber(c.Request().Context(), owner, c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) createIntent(c echo.Context) error {
	owner := ownerFromRequest(c)

	intent, err := h.uc.CreatePaymentIntent(c.Request().Context(), owner, c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"client_secret": intent.ClientSecret,
		"intent_id":     intent.IntentID,
	})
}

func (h *OrderHandler) pay(c echo.Context) error {
	owner := ownerFromRequest(c)

	var req PayRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	result, err := h.uc.CapturePayment(c.Request().Context(), owner, c.Param("number"), map[string]string{
		"intent_id":      req.IntentID,
		"payment_method": req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":         result.Status,
		"transaction_id": result.TransactionID,
	})
}

// updateStatus serves the back-office fulfillment flow, which sits behind
// its own gateway; this service does not enforce admin identity.
func (h *OrderHandler) updateStatus(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.ful.UpdateStatus(c.Request().Context(), orderID, req.Status); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
