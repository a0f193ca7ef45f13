//go:build unit

package money_test

import (
	"testing"

	"storefront-checkout/internal/domain/money"

	"github.com/stretchr/testify/assert"
)

func TestPercentOf(t *testing.T) {
	testCases := []struct {
		name     string
		amount   int64
		pct      int32
		expected int64
	}{
		{name: "10 percent of 10000", amount: 10000, pct: 10, expected: 1000},
		{name: "10 percent of 2598 truncates", amount: 2598, pct: 10, expected: 259},
		{name: "truncation never rounds up", amount: 999, pct: 10, expected: 99},
		{name: "100 percent", amount: 3500, pct: 100, expected: 3500},
		{name: "1 percent of small amount", amount: 99, pct: 1, expected: 0},
		{name: "zero amount", amount: 0, pct: 50, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, money.PercentOf(tc.amount, tc.pct))
		})
	}
}

func TestClampNonNegative(t *testing.T) {
	assert.Equal(t, int64(0), money.ClampNonNegative(-2000))
	assert.Equal(t, int64(0), money.ClampNonNegative(0))
	assert.Equal(t, int64(42), money.ClampNonNegative(42))
}
