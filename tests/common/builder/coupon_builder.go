//go:build unit || e2e

package builder

import (
	"time"

	domcoupon "storefront-checkout/internal/domain/coupon"
	"storefront-checkout/internal/usecase/commands"
	"storefront-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

type CouponBuilder struct {
	ID            uuid.UUID
	Code          string
	DiscountType  domcoupon.DiscountType
	DiscountPct   *int32
	DiscountCents *int64
	Active        bool
	StartsAt      *time.Time
	EndsAt        *time.Time
	UsageLimit    *int32
	Uses          int32
}

func NewCouponBuilder() *CouponBuilder {
	pct := int32(10)
	return &CouponBuilder{
		ID:           uuid.New(),
		Code:         "SAVE10",
		DiscountType: domcoupon.DiscountPercent,
		DiscountPct:  &pct,
		Active:       true,
	}
}

func (b *CouponBuilder) With(mutate func(*CouponBuilder)) *CouponBuilder {
	mutate(b)
	return b
}

func (b *CouponBuilder) WithFixedDiscount(amountOffCents int64) *CouponBuilder {
	b.DiscountType = domcoupon.DiscountFixed
	b.DiscountPct = nil
	b.DiscountCents = &amountOffCents
	return b
}

func (b *CouponBuilder) WithPercentDiscount(pct int32) *CouponBuilder {
	b.DiscountType = domcoupon.DiscountPercent
	b.DiscountPct = &pct
	b.DiscountCents = nil
	return b
}

func (b *CouponBuilder) WithWindow(startsAt, endsAt time.Time) *CouponBuilder {
	b.StartsAt = &startsAt
	b.EndsAt = &endsAt
	return b
}

func (b *CouponBuilder) WithUsageLimit(limit, uses int32) *CouponBuilder {
	b.UsageLimit = &limit
	b.Uses = uses
	return b
}

// Build methods
func (b *CouponBuilder) BuildDomain() (*domcoupon.Coupon, error) {
	return domcoupon.NewCoupon(
		b.ID,
		b.Code,
		b.DiscountType,
		b.DiscountPct,
		b.DiscountCents,
		b.Active,
		b.StartsAt,
		b.EndsAt,
		b.UsageLimit,
		b.Uses,
	)
}

func (b *CouponBuilder) BuildSnapshot() *commands.CouponSnapshot {
	return &commands.CouponSnapshot{
		ID:            b.ID,
		Code:          b.Code,
		DiscountType:  string(b.DiscountType),
		DiscountPct:   b.DiscountPct,
		DiscountCents: b.DiscountCents,
		Active:        b.Active,
		StartsAt:      b.StartsAt,
		EndsAt:        b.EndsAt,
		UsageLimit:    b.UsageLimit,
		Uses:          b.Uses,
	}
}

func (b *CouponBuilder) BuildView() *queries.CouponView {
	return &queries.CouponView{
		ID:            b.ID,
		Code:          b.Code,
		DiscountType:  string(b.DiscountType),
		DiscountPct:   b.DiscountPct,
		DiscountCents: b.DiscountCents,
		Active:        b.Active,
		StartsAt:      b.StartsAt,
		EndsAt:        b.EndsAt,
		UsageLimit:    b.UsageLimit,
		Uses:          b.Uses,
	}
}
