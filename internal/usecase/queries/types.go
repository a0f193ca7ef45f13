package queries

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type OrderView struct {
	ID            uuid.UUID       `json:"id"`
	UserID        *uuid.UUID      `json:"user_id,omitempty"`
	Status        string          `json:"status"`
	SubtotalCents int64           `json:"subtotal_cents"`
	DiscountCents int64           `json:"discount_cents"`
	TotalCents    int64           `json:"total_cents"`
	Currency      string          `json:"currency"`
	CouponID      *uuid.UUID      `json:"coupon_id,omitempty"`
	CouponCode    *string         `json:"coupon_code,omitempty"`
	Shipping      json.RawMessage `json:"shipping,omitempty"`
	Items         []OrderItemView `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

type OrderItemView struct {
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int32     `json:"quantity"`
}

type InventoryView struct {
	ProductID uuid.UUID `json:"product_id"`
	OnHand    int32     `json:"on_hand"`
	Reserved  int32     `json:"reserved"`
	Available int32     `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CouponView struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountPct   *int32     `json:"discount_pct,omitempty"`
	DiscountCents *int64     `json:"discount_cents,omitempty"`
	Active        bool       `json:"active"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	UsageLimit    *int32     `json:"usage_limit,omitempty"`
	Uses          int32      `json:"uses"`
}

// CouponPreview is the advisory quote returned by coupon validation; nothing
// is reserved or counted until checkout.
type CouponPreview struct {
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason,omitempty"`
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`
}
