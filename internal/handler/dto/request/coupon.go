package request

import (
	"storefront-checkout/internal/domain/pricing"

	"github.com/google/uuid"
)

type PreviewItemRequest struct {
	ProductID      uuid.UUID `json:"product_id" binding:"required"`
	UnitPriceCents int64     `json:"unit_price_cents" binding:"required,gt=0"`
	Quantity       int32     `json:"quantity" binding:"required,gt=0"`
}

type ValidateCouponRequest struct {
	Code  string               `json:"code" binding:"required"`
	Items []PreviewItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r ValidateCouponRequest) ToLines() []pricing.Line {
	lines := make([]pricing.Line, len(r.Items))
	for i, item := range r.Items {
		lines[i] = pricing.Line{
			ProductID:      item.ProductID,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		}
	}
	return lines
}
