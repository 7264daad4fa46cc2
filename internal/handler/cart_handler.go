package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/usecase"
)

type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddItemRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type MergeCartRequest struct {
	UserID         int64  `json:"user_id"`
	GuestSessionID string `json:"guest_session_id"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:id", h.updateItem)
	g.DELETE("/items/:id", h.removeItem)
	g.DELETE("", h.clear)
	g.POST("/coupon", h.applyCoupon)
	g.POST("/merge", h.merge)
}

func (h *CartHandler) getCart(c echo.Context) error {
	owner := ownerFromRequest(c)

	out, err := h.uc.GetCart(
		c.Request().Context(),
		owner,
		optionalString(c.QueryParam("coupon")),
		c.QueryParam("country"),
	)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	owner := ownerFromRequest(c)

	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), owner, usecase.AddItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	owner := ownerFromRequest(c)

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateQuantity(c.Request().Context(), owner, itemID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	owner := ownerFromRequest(c)

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.RemoveItem(c.Request().Context(), owner, itemID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) clear(c echo.Context) error {
	owner := ownerFromRequest(c)

	if err := h.uc.Clear(c.Request().Context(), owner); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) applyCoupon(c echo.Context) error {
	owner := ownerFromRequest(c)

	var req ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.ApplyCoupon(c.Request().Context(), owner, req.Code, c.QueryParam("country"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// merge is invoked by the auth layer's login listener, not by browsers.
func (h *CartHandler) merge(c echo.Context) error {
	var req MergeCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.MergeGuestIntoUser(c.Request().Context(), req.UserID, req.GuestSessionID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
