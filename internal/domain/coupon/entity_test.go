//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"storefront-checkout/internal/domain/coupon"
	"storefront-checkout/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.CouponBuilder)
	at     time.Time
	errIs  error
}

var baseTime = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestCoupon(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewCouponBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.Equal(t, "SAVE10", actual.Code().String())
		assert.Equal(t, coupon.DiscountPercent, actual.Discount().Type())
		assert.NoError(t, actual.ValidateAt(baseTime))
	})

	t.Run("code normalization", func(t *testing.T) {
		actual, err := builder.NewCouponBuilder().
			With(func(b *builder.CouponBuilder) { b.Code = "  save10  " }).
			BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", actual.Code().String())
	})

	t.Run("code validation", func(t *testing.T) {
		for _, code := range []string{"", "AB", "HAS SPACE", "O'BRIEN", "TOOLONGTOOLONGTOOLONGX"} {
			_, err := coupon.NewCode(code)
			assert.ErrorIs(t, err, coupon.ErrInvalidCouponCode, "code %q", code)
		}
	})

	t.Run("validity window", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "inactive coupon",
				mutate: func(b *builder.CouponBuilder) { b.Active = false },
				at:     baseTime,
				errIs:  coupon.ErrCouponInactive,
			},
			{
				name: "before window",
				mutate: func(b *builder.CouponBuilder) {
					b.WithWindow(baseTime.Add(time.Hour), baseTime.Add(48*time.Hour))
				},
				at:    baseTime,
				errIs: coupon.ErrCouponNotStarted,
			},
			{
				name: "after window",
				mutate: func(b *builder.CouponBuilder) {
					b.WithWindow(baseTime.Add(-48*time.Hour), baseTime.Add(-time.Hour))
				},
				at:    baseTime,
				errIs: coupon.ErrCouponExpired,
			},
			{
				name: "exactly at start",
				mutate: func(b *builder.CouponBuilder) {
					b.WithWindow(baseTime, baseTime.Add(time.Hour))
				},
				at: baseTime,
			},
			{
				name: "exactly at end",
				mutate: func(b *builder.CouponBuilder) {
					b.WithWindow(baseTime.Add(-time.Hour), baseTime)
				},
				at: baseTime,
			},
		})
	})

	t.Run("usage cap", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "under the cap",
				mutate: func(b *builder.CouponBuilder) { b.WithUsageLimit(100, 99) },
				at:     baseTime,
			},
			{
				name:   "cap reached",
				mutate: func(b *builder.CouponBuilder) { b.WithUsageLimit(100, 100) },
				at:     baseTime,
				errIs:  coupon.ErrUsageLimitReached,
			},
			{
				name:   "no cap",
				mutate: func(b *builder.CouponBuilder) { b.Uses = 1000000 },
				at:     baseTime,
			},
		})
	})
}

func TestDiscount(t *testing.T) {
	t.Run("percent bounds", func(t *testing.T) {
		for _, pct := range []int32{0, -5, 101} {
			_, err := coupon.NewPercentDiscount(pct)
			assert.ErrorIs(t, err, coupon.ErrInvalidDiscountPercent, "pct %d", pct)
		}
		for _, pct := range []int32{1, 50, 100} {
			_, err := coupon.NewPercentDiscount(pct)
			assert.NoError(t, err, "pct %d", pct)
		}
	})

	t.Run("fixed amount must be positive", func(t *testing.T) {
		for _, amount := range []int64{0, -500} {
			_, err := coupon.NewFixedDiscount(amount)
			assert.ErrorIs(t, err, coupon.ErrInvalidDiscountAmount, "amount %d", amount)
		}
	})

	t.Run("exactly one discount field", func(t *testing.T) {
		pct := int32(10)
		amount := int64(500)

		_, err := coupon.NewDiscount(coupon.DiscountPercent, &pct, &amount)
		assert.ErrorIs(t, err, coupon.ErrAmbiguousDiscount)

		_, err = coupon.NewDiscount(coupon.DiscountPercent, nil, nil)
		assert.ErrorIs(t, err, coupon.ErrAmbiguousDiscount)

		_, err = coupon.NewDiscount(coupon.DiscountFixed, &pct, nil)
		assert.ErrorIs(t, err, coupon.ErrAmbiguousDiscount)

		_, err = coupon.NewDiscount(coupon.DiscountType("BOGUS"), &pct, nil)
		assert.ErrorIs(t, err, coupon.ErrAmbiguousDiscount)
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewCouponBuilder()
			if tc.mutate != nil {
				tc.mutate(b)
			}

			actual, err := b.BuildDomain()
			require.NoError(t, err)

			validationErr := actual.ValidateAt(tc.at)
			if tc.errIs != nil {
				assert.ErrorIs(t, validationErr, tc.errIs)
			} else {
				assert.NoError(t, validationErr)
			}
		})
	}
}
