package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	"storefront-checkout/internal/domain/coupon"
	"storefront-checkout/internal/domain/order"
	"storefront-checkout/internal/domain/pricing"
	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/pkg/clock"
	"storefront-checkout/internal/pkg/errs"
	"storefront-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart         = errs.New("cart is empty")
	ErrInvalidLine       = errs.New("invalid cart line")
	ErrProductNotFound   = errs.New("product not found in inventory")
	ErrInsufficientStock = errs.New("insufficient stock")
	ErrInvalidCoupon     = errs.New("invalid coupon")
	ErrPersistenceFailed = errs.New("persistence failed")
)

const (
	EventOrderCompleted = "order_completed"
	EventCouponApplied  = "coupon_applied"
)

// CartLineInput carries the price snapshot taken at add-to-cart time along
// with the catalog fields frozen into the order item.
type CartLineInput struct {
	ProductID      uuid.UUID
	SKU            string
	Name           string
	UnitPriceCents int64
	Quantity       int32
}

type CheckoutParams struct {
	Lines      []CartLineInput
	CouponCode *string
	Shipping   json.RawMessage
	UserID     *uuid.UUID
}

type CheckoutPolicy struct {
	// StrictCouponLimit rejects the whole order when the coupon cap is
	// exhausted between validation and finalization. When false the order
	// stands with the discount already priced in and the overshoot is only
	// logged.
	StrictCouponLimit bool
	Currency          string
}

type CheckoutCommands interface {
	Checkout(ctx context.Context, params CheckoutParams) (*queries.OrderView, error)
}

// checkoutUseCaseImpl runs each request through
// VALIDATING -> RESERVING -> PERSISTING -> FINALIZING, compensating any
// reservations already taken when a later step fails. It is the single
// checkout implementation; every surface (HTTP, jobs) calls it rather than
// reimplementing the sequence.
type checkoutUseCaseImpl struct {
	inventory InventoryLedger
	coupons   CouponRepository
	orders    OrderRepository
	uow       UnitOfWork
	events    EventPublisher
	clock     clock.Clock
	policy    CheckoutPolicy
}

func NewCheckoutCommands(
	inventory InventoryLedger,
	coupons CouponRepository,
	orders OrderRepository,
	uow UnitOfWork,
	events EventPublisher,
	clock clock.Clock,
	policy CheckoutPolicy,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		inventory: inventory,
		coupons:   coupons,
		orders:    orders,
		uow:       uow,
		events:    events,
		clock:     clock,
		policy:    policy,
	}
}

func (u *checkoutUseCaseImpl) Checkout(ctx context.Context, params CheckoutParams) (*queries.OrderView, error) {
	// VALIDATING: no side effects may happen before this section completes.
	// Cart problems come first so an empty cart is never reported as a
	// coupon problem.
	if err := validateLines(params.Lines); err != nil {
		return nil, err
	}

	couponEntity, err := u.validateCoupon(ctx, params.CouponCode)
	if err != nil {
		return nil, err
	}

	quote, err := priceLines(params.Lines, couponEntity)
	if err != nil {
		return nil, err
	}

	// RESERVING: ascending product id keeps lock acquisition order identical
	// across concurrent checkouts, so two orders holding the same two
	// products cannot deadlock each other.
	reserved, err := u.reserveLines(ctx, params.Lines)
	if err != nil {
		return nil, err
	}

	// PERSISTING: reservation is already confirmed and will be released
	// independently if the write fails; no inventory lock is held here.
	orderEntity, err := u.persistOrder(ctx, params, couponEntity, quote, reserved)
	if err != nil {
		return nil, err
	}

	// FINALIZING: the authoritative usage-cap check. Failure here is
	// non-fatal to the order unless strict mode says otherwise.
	couponRecorded := false
	if couponEntity != nil {
		recorded, err := u.finalizeCoupon(ctx, orderEntity, couponEntity, reserved)
		if err != nil {
			return nil, err
		}
		couponRecorded = recorded
	}

	u.publishCompleted(ctx, orderEntity, couponEntity, couponRecorded)

	return orderViewFromEntity(orderEntity, couponEntity), nil
}

func (u *checkoutUseCaseImpl) validateCoupon(ctx context.Context, code *string) (*coupon.Coupon, error) {
	if code == nil {
		return nil, nil
	}

	normalized, err := coupon.NewCode(*code)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCoupon)
	}

	snap, err := u.coupons.FindByCode(ctx, normalized.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrInvalidCoupon)
		}
		return nil, errs.Mark(err, ErrPersistenceFailed)
	}

	entity, err := coupon.NewCoupon(
		snap.ID,
		snap.Code,
		coupon.DiscountType(snap.DiscountType),
		snap.DiscountPct,
		snap.DiscountCents,
		snap.Active,
		snap.StartsAt,
		snap.EndsAt,
		snap.UsageLimit,
		snap.Uses,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCoupon)
	}

	if err := entity.ValidateAt(u.clock.Now()); err != nil {
		return nil, errs.Mark(err, ErrInvalidCoupon)
	}

	return entity, nil
}

func toPricingLines(lines []CartLineInput) []pricing.Line {
	pricingLines := make([]pricing.Line, len(lines))
	for i, line := range lines {
		pricingLines[i] = pricing.Line{
			ProductID:      line.ProductID,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		}
	}
	return pricingLines
}

func validateLines(lines []CartLineInput) error {
	if err := pricing.ValidateLines(toPricingLines(lines)); err != nil {
		if errors.Is(err, pricing.ErrEmptyCart) {
			return errs.Mark(err, ErrEmptyCart)
		}
		return errs.Mark(err, ErrInvalidLine)
	}
	return nil
}

func priceLines(lines []CartLineInput, couponEntity *coupon.Coupon) (pricing.Quote, error) {
	quote, err := pricing.PriceCart(toPricingLines(lines), couponEntity)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrEmptyCart):
			return pricing.Quote{}, errs.Mark(err, ErrEmptyCart)
		default:
			return pricing.Quote{}, errs.Mark(err, ErrInvalidLine)
		}
	}
	return quote, nil
}

// reserveLines places holds line by line and returns the lines actually
// reserved so far. On the first failure everything already held is released
// in reverse order, making reservation all-or-nothing for the request.
func (u *checkoutUseCaseImpl) reserveLines(ctx context.Context, lines []CartLineInput) ([]CartLineInput, error) {
	sorted := slices.Clone(lines)
	slices.SortFunc(sorted, func(a, b CartLineInput) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	reserved := make([]CartLineInput, 0, len(sorted))
	for _, line := range sorted {
		// A canceled checkout must still clean up after itself.
		if ctxErr := ctx.Err(); ctxErr != nil {
			u.releaseReserved(ctx, reserved)
			return nil, ctxErr
		}

		if err := u.inventory.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			u.releaseReserved(ctx, reserved)
			switch {
			case infra.IsKind(err, infra.KindNotFound):
				return nil, errs.Mark(err, ErrProductNotFound)
			case infra.IsKind(err, infra.KindConflict):
				return nil, errs.Mark(&StockShortageError{ProductID: line.ProductID}, ErrInsufficientStock)
			default:
				return nil, errs.Mark(err, ErrPersistenceFailed)
			}
		}
		reserved = append(reserved, line)
	}

	return reserved, nil
}

func (u *checkoutUseCaseImpl) persistOrder(
	ctx context.Context,
	params CheckoutParams,
	couponEntity *coupon.Coupon,
	quote pricing.Quote,
	reserved []CartLineInput,
) (*order.Order, error) {
	items := make([]order.Item, len(params.Lines))
	for i, line := range params.Lines {
		items[i] = order.Item{
			ProductID:      line.ProductID,
			SKU:            line.SKU,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		}
	}

	var couponID *uuid.UUID
	if couponEntity != nil {
		id := couponEntity.ID()
		couponID = &id
	}

	orderEntity, err := order.NewPendingOrder(
		params.UserID,
		quote.SubtotalCents,
		quote.DiscountCents,
		quote.TotalCents,
		u.policy.Currency,
		couponID,
		params.Shipping,
		items,
		u.clock.Now(),
	)
	if err != nil {
		u.releaseReserved(ctx, reserved)
		return nil, errs.Mark(err, ErrInvalidLine)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		_, createErr := tx.Orders().Create(ctx, orderEntity)
		return createErr
	})
	if err != nil {
		u.releaseReserved(ctx, reserved)
		return nil, errs.Mark(err, ErrPersistenceFailed)
	}

	return orderEntity, nil
}

func (u *checkoutUseCaseImpl) finalizeCoupon(
	ctx context.Context,
	orderEntity *order.Order,
	couponEntity *coupon.Coupon,
	reserved []CartLineInput,
) (bool, error) {
	err := u.coupons.CommitUsage(ctx, couponEntity.ID())
	if err == nil {
		return true, nil
	}

	if infra.IsKind(err, infra.KindConflict) && u.policy.StrictCouponLimit {
		u.releaseReserved(ctx, reserved)
		if cancelErr := u.orders.UpdateStatus(ctx, orderEntity.ID(), order.StatusPending, order.StatusCancelled); cancelErr != nil {
			slog.Error("failed to cancel order after coupon cap rejection",
				"order_id", orderEntity.ID(), "error", cancelErr.Error())
		}
		return false, errs.Mark(err, ErrInvalidCoupon)
	}

	// The inventory is already committed to this customer; the discount
	// priced into the total stands even though the cap was exhausted by a
	// concurrent order. No usage was recorded, so no coupon event goes out.
	slog.Warn("coupon usage cap exhausted after pricing, order kept",
		"order_id", orderEntity.ID(),
		"coupon_id", couponEntity.ID(),
		"error", err.Error())
	return false, nil
}

// releaseReserved compensates in reverse reservation order. It runs on a
// detached context so cleanup survives request cancellation.
func (u *checkoutUseCaseImpl) releaseReserved(ctx context.Context, reserved []CartLineInput) {
	ctx = context.WithoutCancel(ctx)
	for i := len(reserved) - 1; i >= 0; i-- {
		line := reserved[i]
		if err := u.inventory.Release(ctx, line.ProductID, line.Quantity); err != nil {
			slog.Error("failed to release reservation during compensation",
				"product_id", line.ProductID,
				"quantity", line.Quantity,
				"error", err.Error())
		}
	}
}

func (u *checkoutUseCaseImpl) publishCompleted(ctx context.Context, orderEntity *order.Order, couponEntity *coupon.Coupon, couponRecorded bool) {
	u.events.Publish(ctx, EventOrderCompleted, map[string]any{
		"order_id": orderEntity.ID(),
	})
	if couponEntity != nil && couponRecorded {
		u.events.Publish(ctx, EventCouponApplied, map[string]any{
			"order_id":  orderEntity.ID(),
			"coupon_id": couponEntity.ID(),
			"code":      couponEntity.Code().String(),
		})
	}
}

func orderViewFromEntity(orderEntity *order.Order, couponEntity *coupon.Coupon) *queries.OrderView {
	items := make([]queries.OrderItemView, len(orderEntity.Items()))
	for i, item := range orderEntity.Items() {
		items[i] = queries.OrderItemView{
			ProductID:      item.ProductID,
			SKU:            item.SKU,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		}
	}

	var couponCode *string
	if couponEntity != nil {
		code := couponEntity.Code().String()
		couponCode = &code
	}

	return &queries.OrderView{
		ID:            orderEntity.ID(),
		UserID:        orderEntity.UserID(),
		Status:        orderEntity.Status().String(),
		SubtotalCents: orderEntity.SubtotalCents(),
		DiscountCents: orderEntity.DiscountCents(),
		TotalCents:    orderEntity.TotalCents(),
		Currency:      orderEntity.Currency(),
		CouponID:      orderEntity.CouponID(),
		CouponCode:    couponCode,
		Shipping:      orderEntity.Shipping(),
		Items:         items,
		CreatedAt:     orderEntity.CreatedAt(),
	}
}
