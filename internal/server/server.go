package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"storefront/internal/handler"
)

type Handlers struct {
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Product  *handler.ProductHandler
}

func New(h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	h.Cart.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
	h.Order.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)

	return e
}

func Start(addr string, h Handlers) error {
	return New(h).Start(addr)
}
