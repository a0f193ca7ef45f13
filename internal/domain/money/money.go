// Package money provides fixed-point currency arithmetic in minor units
// (cents). Floating point never touches a price.
package money

// PercentOf returns pct percent of amount, truncated toward zero so a
// percentage discount never rounds past the stated rate.
func PercentOf(amount int64, pct int32) int64 {
	return amount * int64(pct) / 100
}

func ClampNonNegative(amount int64) int64 {
	if amount < 0 {
		return 0
	}
	return amount
}
