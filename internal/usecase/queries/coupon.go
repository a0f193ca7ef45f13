package queries

import (
	"context"

	"storefront-checkout/internal/domain/coupon"
	"storefront-checkout/internal/domain/pricing"
	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/pkg/clock"
	"storefront-checkout/internal/pkg/errs"
)

type CouponReadStore interface {
	FindByCode(ctx context.Context, code string) (*CouponView, error)
}

// CouponQueries previews a discount for a cart without reserving anything.
// The verdict is advisory: the usage cap is only enforced for real when
// checkout commits usage.
type CouponQueries interface {
	Preview(ctx context.Context, code string, lines []pricing.Line) (*CouponPreview, error)
}

type couponQueriesImpl struct {
	readStore CouponReadStore
	clock     clock.Clock
}

func NewCouponQueries(readStore CouponReadStore, clock clock.Clock) CouponQueries {
	return &couponQueriesImpl{readStore: readStore, clock: clock}
}

func (q *couponQueriesImpl) Preview(ctx context.Context, code string, lines []pricing.Line) (*CouponPreview, error) {
	base, err := pricing.PriceCart(lines, nil)
	if err != nil {
		return nil, err
	}

	entity, reason, err := q.lookupCoupon(ctx, code)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return &CouponPreview{
			Valid:         false,
			Reason:        reason,
			SubtotalCents: base.SubtotalCents,
			DiscountCents: 0,
			TotalCents:    base.SubtotalCents,
		}, nil
	}

	quote, err := pricing.PriceCart(lines, entity)
	if err != nil {
		return nil, err
	}

	return &CouponPreview{
		Valid:         true,
		SubtotalCents: quote.SubtotalCents,
		DiscountCents: quote.DiscountCents,
		TotalCents:    quote.TotalCents,
	}, nil
}

// lookupCoupon separates "coupon is unusable" (a preview outcome) from
// infrastructure failure (an error).
func (q *couponQueriesImpl) lookupCoupon(ctx context.Context, code string) (*coupon.Coupon, string, error) {
	normalized, err := coupon.NewCode(code)
	if err != nil {
		return nil, "invalid coupon code", nil
	}

	view, err := q.readStore.FindByCode(ctx, normalized.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, "invalid coupon code", nil
		}
		return nil, "", errs.Wrap(err, "failed to look up coupon")
	}

	entity, err := coupon.NewCoupon(
		view.ID,
		view.Code,
		coupon.DiscountType(view.DiscountType),
		view.DiscountPct,
		view.DiscountCents,
		view.Active,
		view.StartsAt,
		view.EndsAt,
		view.UsageLimit,
		view.Uses,
	)
	if err != nil {
		return nil, "invalid coupon code", nil
	}

	if err := entity.ValidateAt(q.clock.Now()); err != nil {
		return nil, err.Error(), nil
	}

	return entity, "", nil
}
