package request

import (
	"encoding/json"
	"strings"

	"storefront-checkout/internal/usecase/commands"

	"github.com/google/uuid"
)

type CartItemRequest struct {
	ProductID      uuid.UUID `json:"product_id" binding:"required"`
	SKU            string    `json:"sku" binding:"required"`
	Name           string    `json:"name" binding:"required"`
	UnitPriceCents int64     `json:"unit_price_cents" binding:"required,gt=0"`
	Quantity       int32     `json:"quantity" binding:"required,gt=0"`
}

type CheckoutRequest struct {
	Items      []CartItemRequest `json:"items" binding:"required,min=1,dive"`
	CouponCode *string           `json:"coupon_code,omitempty"`
	Shipping   json.RawMessage   `json:"shipping,omitempty"`
}

func (r CheckoutRequest) GetCouponCode() *string {
	if r.CouponCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.CouponCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (r CheckoutRequest) ToParams(userID *uuid.UUID) commands.CheckoutParams {
	lines := make([]commands.CartLineInput, len(r.Items))
	for i, item := range r.Items {
		lines[i] = commands.CartLineInput{
			ProductID:      item.ProductID,
			SKU:            item.SKU,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		}
	}

	return commands.CheckoutParams{
		Lines:      lines,
		CouponCode: r.GetCouponCode(),
		Shipping:   r.Shipping,
		UserID:     userID,
	}
}
