package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/event"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	"storefront/internal/server"
	"storefront/internal/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	txManager := infraRepo.NewTxManagerGorm(gormDB, cfg.CheckoutLockTimeout)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)

	engine := pricing.NewEngine(nil, flatShipping(cfg.ShippingFlatRate))

	bus := event.NewBus(logger)
	bus.SubscribeOrderPlaced(func(ctx context.Context, ev event.OrderPlaced) {
		// Notification dispatch hangs off here; the log line is the
		// integration point until the mail/analytics consumers land.
		logger.Info("order placed",
			zap.String("number", ev.Order.Number),
			zap.String("total", ev.Order.Total.String()),
			zap.Int("items", len(ev.Items)),
		)
	})

	gateway := buildGateway(cfg, logger)

	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, couponRepo, engine)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, cartRepo, engine, bus, logger)
	orderUC := usecase.NewOrderUsecase(txManager, gateway, logger)
	fulfillmentUC := usecase.NewFulfillmentUsecase(txManager, logger)
	catalogUC := usecase.NewCatalogUsecase(productRepo)

	handlers := server.Handlers{
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC),
		Order:    handler.NewOrderHandler(orderUC, fulfillmentUC),
		Product:  handler.NewProductHandler(catalogUC),
	}

	logger.Info("starting storefront api", zap.String("port", cfg.Port))
	if err := server.Start(":"+cfg.Port, handlers); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		lvl.SetLevel(zapcore.InfoLevel)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func buildGateway(cfg config.Config, logger *zap.Logger) payment.Gateway {
	if cfg.StripeAPIKey == "" {
		logger.Warn("STRIPE_API_KEY not set, payment endpoints disabled")
		return disabledGateway{}
	}

	g, err := payment.NewStripeGateway(cfg.StripeAPIKey, cfg.Currency)
	if err != nil {
		logger.Fatal("stripe gateway init failed", zap.Error(err))
	}
	return g
}

func flatShipping(rate string) pricing.ShippingFunc {
	flat, err := decimal.NewFromString(rate)
	if err != nil {
		flat = decimal.NewFromInt(5)
	}
	return func(subtotal decimal.Decimal, _ string) decimal.Decimal {
		if subtotal.IsZero() {
			return decimal.Zero
		}
		return flat
	}
}

// disabledGateway stands in when no payment provider is configured.
type disabledGateway struct{}

var errNoGateway = errors.New("no payment gateway configured")

func (disabledGateway) CreateIntent(context.Context, model.Order) (payment.Intent, error) {
	return payment.Intent{}, errNoGateway
}

func (disabledGateway) Charge(context.Context, model.Order, map[string]string) (payment.ChargeResult, error) {
	return payment.ChargeResult{}, errNoGateway
}

func (disabledGateway) Refund(context.Context, model.Order, *decimal.Decimal) (payment.RefundResult, error) {
	return payment.RefundResult{}, errNoGateway
}

func (disabledGateway) Name() string { return "disabled" }
