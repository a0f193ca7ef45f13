// Package pricing composes cart lines and an optional coupon into a quote.
// It is a pure computation: no I/O, no clock, no storage.
package pricing

import (
	"errors"

	"storefront-checkout/internal/domain/coupon"
	"storefront-checkout/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrInvalidLine = errors.New("cart line has non-positive price or quantity")
)

// Line is the price snapshot taken at add-to-cart time. Checkout never
// re-reads the catalog price, so a concurrent catalog edit cannot change
// what the customer was shown.
type Line struct {
	ProductID      uuid.UUID
	UnitPriceCents int64
	Quantity       int32
}

type Quote struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

// ValidateLines rejects an empty cart or a line with a non-positive price or
// quantity. Cart problems are reported ahead of anything coupon-related, so
// callers run this before resolving a coupon code.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, line := range lines {
		if line.UnitPriceCents <= 0 || line.Quantity <= 0 {
			return ErrInvalidLine
		}
	}
	return nil
}

// PriceCart computes subtotal, discount and total for a cart. A fixed coupon
// may exceed the subtotal; the total is clamped at zero rather than going
// negative.
func PriceCart(lines []Line, c *coupon.Coupon) (Quote, error) {
	if err := ValidateLines(lines); err != nil {
		return Quote{}, err
	}

	var subtotal int64
	for _, line := range lines {
		subtotal += line.UnitPriceCents * int64(line.Quantity)
	}

	var discount int64
	if c != nil {
		discount = c.DiscountFor(subtotal)
	}

	return Quote{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TotalCents:    money.ClampNonNegative(subtotal - discount),
	}, nil
}
