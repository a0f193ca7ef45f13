package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCouponInactive    = errors.New("coupon is inactive")
	ErrCouponNotStarted  = errors.New("coupon is not yet active")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
)

type Coupon struct {
	id         uuid.UUID
	code       Code
	discount   Discount
	active     bool
	startsAt   *time.Time
	endsAt     *time.Time
	usageLimit *int32
	uses       int32
}

func NewCoupon(
	id uuid.UUID,
	code string,
	kind DiscountType,
	percentOff *int32,
	amountOffCents *int64,
	active bool,
	startsAt, endsAt *time.Time,
	usageLimit *int32,
	uses int32,
) (*Coupon, error) {
	couponCode, err := NewCode(code)
	if err != nil {
		return nil, err
	}

	discount, err := NewDiscount(kind, percentOff, amountOffCents)
	if err != nil {
		return nil, err
	}

	return &Coupon{
		id:         id,
		code:       couponCode,
		discount:   discount,
		active:     active,
		startsAt:   startsAt,
		endsAt:     endsAt,
		usageLimit: usageLimit,
		uses:       uses,
	}, nil
}

// ValidateAt checks activity, window bounds (inclusive) and the usage cap at
// the given instant. The result is advisory under concurrency: the cap is
// enforced authoritatively again when usage is committed.
func (c *Coupon) ValidateAt(now time.Time) error {
	if !c.active {
		return ErrCouponInactive
	}
	if c.startsAt != nil && now.Before(*c.startsAt) {
		return ErrCouponNotStarted
	}
	if c.endsAt != nil && now.After(*c.endsAt) {
		return ErrCouponExpired
	}
	if c.usageLimit != nil && c.uses >= *c.usageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

func (c *Coupon) DiscountFor(subtotalCents int64) int64 {
	return c.discount.AmountFor(subtotalCents)
}

func (c *Coupon) ID() uuid.UUID        { return c.id }
func (c *Coupon) Code() Code           { return c.code }
func (c *Coupon) Discount() Discount   { return c.discount }
func (c *Coupon) Active() bool         { return c.active }
func (c *Coupon) StartsAt() *time.Time { return c.startsAt }
func (c *Coupon) EndsAt() *time.Time   { return c.endsAt }
func (c *Coupon) UsageLimit() *int32   { return c.usageLimit }
func (c *Coupon) Uses() int32          { return c.uses }
