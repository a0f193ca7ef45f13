//go:build unit || e2e

package builder

import (
	"fmt"

	"storefront-checkout/internal/domain/pricing"
	"storefront-checkout/internal/usecase/commands"

	"github.com/google/uuid"
)

type CartBuilder struct {
	Lines []commands.CartLineInput
}

func NewCartBuilder() *CartBuilder {
	return &CartBuilder{}
}

func (b *CartBuilder) WithLine(unitPriceCents int64, quantity int32) *CartBuilder {
	n := len(b.Lines) + 1
	b.Lines = append(b.Lines, commands.CartLineInput{
		ProductID:      uuid.New(),
		SKU:            fmtSKU(n),
		Name:           "Test Product",
		UnitPriceCents: unitPriceCents,
		Quantity:       quantity,
	})
	return b
}

func (b *CartBuilder) WithProductLine(productID uuid.UUID, unitPriceCents int64, quantity int32) *CartBuilder {
	n := len(b.Lines) + 1
	b.Lines = append(b.Lines, commands.CartLineInput{
		ProductID:      productID,
		SKU:            fmtSKU(n),
		Name:           "Test Product",
		UnitPriceCents: unitPriceCents,
		Quantity:       quantity,
	})
	return b
}

func (b *CartBuilder) BuildParams() commands.CheckoutParams {
	return commands.CheckoutParams{Lines: b.Lines}
}

func (b *CartBuilder) BuildPricingLines() []pricing.Line {
	lines := make([]pricing.Line, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = pricing.Line{
			ProductID:      l.ProductID,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
		}
	}
	return lines
}

func fmtSKU(n int) string {
	return fmt.Sprintf("SKU-%03d", n)
}
