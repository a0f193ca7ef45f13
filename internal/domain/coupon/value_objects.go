package coupon

import (
	"errors"
	"regexp"
	"strings"

	"storefront-checkout/internal/domain/money"
)

var (
	ErrInvalidCouponCode      = errors.New("invalid coupon code format")
	ErrInvalidDiscountAmount  = errors.New("fixed discount must be positive")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 1 and 100")
	ErrAmbiguousDiscount      = errors.New("discount must be exactly one of percent or fixed amount")
)

// Codes are stored and compared uppercase; lookups normalize first.
var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// Discount holds exactly one of a percentage or a fixed amount off,
// consistent with its type.
type Discount struct {
	kind       DiscountType
	percentOff int32
	amountOff  int64
}

func NewPercentDiscount(percentOff int32) (Discount, error) {
	if percentOff < 1 || percentOff > 100 {
		return Discount{}, ErrInvalidDiscountPercent
	}
	return Discount{kind: DiscountPercent, percentOff: percentOff}, nil
}

func NewFixedDiscount(amountOffCents int64) (Discount, error) {
	if amountOffCents <= 0 {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{kind: DiscountFixed, amountOff: amountOffCents}, nil
}

func NewDiscount(kind DiscountType, percentOff *int32, amountOffCents *int64) (Discount, error) {
	switch kind {
	case DiscountPercent:
		if percentOff == nil || amountOffCents != nil {
			return Discount{}, ErrAmbiguousDiscount
		}
		return NewPercentDiscount(*percentOff)
	case DiscountFixed:
		if amountOffCents == nil || percentOff != nil {
			return Discount{}, ErrAmbiguousDiscount
		}
		return NewFixedDiscount(*amountOffCents)
	default:
		return Discount{}, ErrAmbiguousDiscount
	}
}

func (d Discount) Type() DiscountType { return d.kind }
func (d Discount) PercentOff() int32  { return d.percentOff }
func (d Discount) AmountOff() int64   { return d.amountOff }

// AmountFor returns the raw discount for a subtotal. A fixed discount is
// returned as-is even when it exceeds the subtotal; clamping the resulting
// total at zero is the pricing engine's job.
func (d Discount) AmountFor(subtotalCents int64) int64 {
	if d.kind == DiscountPercent {
		return money.PercentOf(subtotalCents, d.percentOff)
	}
	return d.amountOff
}
