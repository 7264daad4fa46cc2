package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/model"
	"storefront/internal/pricing"
	repo "storefront/internal/repository"
)

// CartUsecase owns cart mutation and priced cart reads. The coupon code is
// always an explicit parameter, never ambient session state.
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	couponRepo   repo.CouponRepository
	engine       *pricing.Engine
	now          func() time.Time
}

func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	couponRepo repo.CouponRepository,
	engine *pricing.Engine,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
		engine:       engine,
		now:          time.Now,
	}
}

type CartLineResponse struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	VariantID      *int64          `json:"variant_id"`
	Title          string          `json:"title"`
	ImagePath      string          `json:"image_path"`
	VariantOptions string          `json:"variant_options"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int64           `json:"quantity"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	Items      []CartLineResponse `json:"items"`
	Totals     pricing.Totals     `json:"totals"`
	CouponCode *string            `json:"coupon_code"`
}

type AddItemInput struct {
	ProductID int64
	VariantID *int64
	Quantity  int64
}

// AddItem adds quantity of a purchasable unit to the owner's cart. An
// existing line for the same (product, variant) is incremented instead of
// duplicated. The unit price snapshot records the effective price at add
// time; it is display-only.
func (u *CartUsecase) AddItem(ctx context.Context, owner model.OwnerKey, in AddItemInput) (CartLineResponse, error) {
	if !owner.Valid() {
		return CartLineResponse{}, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid owner")
	}
	if in.ProductID <= 0 {
		return CartLineResponse{}, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartLineResponse{}, errInvalidQuantity()
	}

	unit, err := u.productRepo.DisplayUnit(ctx, in.ProductID, in.VariantID)
	if errors.Is(err, repo.ErrNotFound) {
		if in.VariantID != nil {
			return CartLineResponse{}, errVariantNotFound("variant does not exist")
		}
		return CartLineResponse{}, errProductNotFound("product does not exist")
	}
	if err != nil {
		return CartLineResponse{}, errInternal()
	}
	if !unit.IsActive {
		return CartLineResponse{}, errProductNotFound("product is not purchasable")
	}

	item, err := u.cartItemRepo.UpsertAddQuantity(ctx, owner, in.ProductID, in.VariantID, in.Quantity, unit.EffectivePrice())
	if err != nil {
		return CartLineResponse{}, errInternal()
	}

	return lineResponse(item, unit), nil
}

// UpdateQuantity sets a line's quantity. Quantities below 1 are a hard
// validation error, never silently clamped.
func (u *CartUsecase) UpdateQuantity(ctx context.Context, owner model.OwnerKey, cartItemID int64, qty int64) error {
	if cartItemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid id")
	}
	if qty < 1 {
		return errInvalidQuantity()
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
	}
	if err != nil {
		return errInternal()
	}
	if item.OwnerKey != owner {
		// Someone else's line looks like it does not exist.
		return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
		}
		return errInternal()
	}
	return nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, owner model.OwnerKey, cartItemID int64) error {
	if cartItemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid id")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
	}
	if err != nil {
		return errInternal()
	}
	if item.OwnerKey != owner {
		return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, CodeNotFound, "not found")
		}
		return errInternal()
	}
	return nil
}

func (u *CartUsecase) Clear(ctx context.Context, owner model.OwnerKey) error {
	if err := u.cartItemRepo.DeleteByOwner(ctx, owner); err != nil {
		return errInternal()
	}
	return nil
}

// GetCart returns the owner's cart joined with live display data and
// totals. Unit prices are read fresh from the catalog; the add-time
// snapshot never drives totals. Lines whose unit vanished or went
// inactive are omitted from the response and the totals.
func (u *CartUsecase) GetCart(ctx context.Context, owner model.OwnerKey, couponCode *string, destCountry string) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByOwner(ctx, owner)
	if err != nil {
		return CartResponse{}, errInternal()
	}

	respItems := make([]CartLineResponse, 0, len(items))
	lines := make([]pricing.Line, 0, len(items))

	for _, it := range items {
		unit, err := u.productRepo.DisplayUnit(ctx, it.ProductID, it.VariantID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return CartResponse{}, errInternal()
		}
		if !unit.IsActive {
			continue
		}

		respItems = append(respItems, lineResponse(it, unit))
		lines = append(lines, pricing.Line{UnitPrice: unit.EffectivePrice(), Quantity: it.Quantity})
	}

	coupon, applied := u.lookupCoupon(ctx, couponCode)
	totals := u.engine.Compute(lines, coupon, destCountry)

	return CartResponse{Items: respItems, Totals: totals, CouponCode: applied}, nil
}

// ApplyCoupon validates a coupon at apply time and returns the repriced
// cart. Unlike checkout, where an inapplicable coupon silently contributes
// nothing, applying reports inapplicability explicitly.
func (u *CartUsecase) ApplyCoupon(ctx context.Context, owner model.OwnerKey, code string, destCountry string) (CartResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "coupon code is required")
	}

	c, err := u.couponRepo.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusUnprocessableEntity, CodeCouponInapplicable, "coupon is not applicable")
	}
	if err != nil {
		return CartResponse{}, errInternal()
	}
	if !c.ApplicableAt(u.now()) {
		return CartResponse{}, NewHTTPError(http.StatusUnprocessableEntity, CodeCouponInapplicable, "coupon is not applicable")
	}

	return u.GetCart(ctx, owner, &code, destCountry)
}

// MergeGuestIntoUser reassigns every guest-session line to the user.
// When the user already has a line for the same unit, the quantities are
// combined into the user's line and the guest line is dropped. Safe to
// call with an empty guest cart. Invoked once, at login, by the external
// auth listener.
func (u *CartUsecase) MergeGuestIntoUser(ctx context.Context, userID int64, guestSessionID string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid user id")
	}
	if strings.TrimSpace(guestSessionID) == "" {
		return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, "invalid session id")
	}

	guestOwner := model.SessionOwner(guestSessionID)
	userOwner := model.UserOwner(userID)

	guestItems, err := u.cartItemRepo.ListByOwner(ctx, guestOwner)
	if err != nil {
		return errInternal()
	}
	if len(guestItems) == 0 {
		return nil
	}

	userItems, err := u.cartItemRepo.ListByOwner(ctx, userOwner)
	if err != nil {
		return errInternal()
	}

	for _, gi := range guestItems {
		var existing *model.CartItem
		for i := range userItems {
			if userItems[i].SameUnit(gi.ProductID, gi.VariantID) {
				existing = &userItems[i]
				break
			}
		}

		if existing != nil {
			if err := u.cartItemRepo.UpdateQuantity(ctx, existing.ID, existing.Quantity+gi.Quantity); err != nil {
				return errInternal()
			}
			if err := u.cartItemRepo.DeleteByID(ctx, gi.ID); err != nil {
				return errInternal()
			}
			continue
		}

		if err := u.cartItemRepo.UpdateOwner(ctx, gi.ID, userOwner); err != nil {
			return errInternal()
		}
	}

	return nil
}

func (u *CartUsecase) lookupCoupon(ctx context.Context, code *string) (*model.Coupon, *string) {
	if code == nil || strings.TrimSpace(*code) == "" {
		return nil, nil
	}

	c, err := u.couponRepo.FindByCode(ctx, strings.TrimSpace(*code))
	if err != nil {
		return nil, nil
	}
	if !c.ApplicableAt(u.now()) {
		return nil, nil
	}
	return &c, &c.Code
}

func lineResponse(item model.CartItem, unit model.InventoryUnit) CartLineResponse {
	price := unit.EffectivePrice()
	return CartLineResponse{
		ID:             item.ID,
		ProductID:      item.ProductID,
		VariantID:      item.VariantID,
		Title:          unit.Title,
		ImagePath:      unit.ImagePath,
		VariantOptions: unit.VariantOptions,
		UnitPrice:      price,
		Quantity:       item.Quantity,
		LineTotal:      price.Mul(decimal.NewFromInt(item.Quantity)).Round(2),
	}
}
