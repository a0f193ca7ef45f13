package order

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoItems = errors.New("order must have at least one item")

// Item is an immutable snapshot of a cart line at order-creation time,
// decoupled from later catalog edits.
type Item struct {
	ProductID      uuid.UUID
	SKU            string
	Name           string
	UnitPriceCents int64
	Quantity       int32
}

type Order struct {
	id            uuid.UUID
	userID        *uuid.UUID
	status        Status
	subtotalCents int64
	discountCents int64
	totalCents    int64
	currency      string
	couponID      *uuid.UUID
	shipping      json.RawMessage
	items         []Item
	createdAt     time.Time
}

func NewPendingOrder(
	userID *uuid.UUID,
	subtotalCents, discountCents, totalCents int64,
	currency string,
	couponID *uuid.UUID,
	shipping json.RawMessage,
	items []Item,
	now time.Time,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	return &Order{
		id:            uuid.New(),
		userID:        userID,
		status:        StatusPending,
		subtotalCents: subtotalCents,
		discountCents: discountCents,
		totalCents:    totalCents,
		currency:      currency,
		couponID:      couponID,
		shipping:      shipping,
		items:         items,
		createdAt:     now,
	}, nil
}

func ReconstructOrder(
	id uuid.UUID,
	userID *uuid.UUID,
	status Status,
	subtotalCents, discountCents, totalCents int64,
	currency string,
	couponID *uuid.UUID,
	shipping json.RawMessage,
	items []Item,
	createdAt time.Time,
) *Order {
	return &Order{
		id:            id,
		userID:        userID,
		status:        status,
		subtotalCents: subtotalCents,
		discountCents: discountCents,
		totalCents:    totalCents,
		currency:      currency,
		couponID:      couponID,
		shipping:      shipping,
		items:         items,
		createdAt:     createdAt,
	}
}

func (o *Order) TransitionTo(next Status) error {
	if !o.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.status = next
	return nil
}

func (o *Order) ID() uuid.UUID { return o.id }
func (o *Order) UserID() *uuid.UUID { return o.userID }
func (o *Order) Status() Status { return o.status }
func (o *Order) SubtotalCents() int64 { return o.subtotalCents }
func (o *Order) DiscountCents() int64 { return o.discountCents }
func (o *Order) TotalCents() int64 { return o.totalCents }
func (o *Order) Currency() string { return o.currency }
func (o *Order) CouponID() *uuid.UUID { return o.couponID }
func (o *Order) Shipping() json.RawMessage { return o.shipping }
func (o *Order) Items() []Item { return o.items }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
