package commands

import (
	"context"
	"fmt"
	"time"

	"storefront-checkout/internal/domain/order"

	"github.com/google/uuid"
)

// InventoryLedger is the per-product reservation ledger. Every operation is a
// single atomic read-modify-write scoped to one product row; there is no
// cross-product locking.
type InventoryLedger interface {
	// Reserve places a hold of qty against the product. It fails without
	// mutating state when on_hand - reserved < qty.
	Reserve(ctx context.Context, productID uuid.UUID, qty int32) error
	// Release undoes a prior successful Reserve of the same quantity.
	Release(ctx context.Context, productID uuid.UUID, qty int32) error
	// Commit consumes stock on fulfillment: on_hand and reserved decrease
	// together.
	Commit(ctx context.Context, productID uuid.UUID, qty int32) error
}

type CouponSnapshot struct {
	ID            uuid.UUID
	Code          string
	DiscountType  string
	DiscountPct   *int32
	DiscountCents *int64
	Active        bool
	StartsAt      *time.Time
	EndsAt        *time.Time
	UsageLimit    *int32
	Uses          int32
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*CouponSnapshot, error)
	// CommitUsage increments the uses counter, re-checking the usage cap
	// atomically. This is the authoritative enforcement point; validation at
	// checkout start is advisory only.
	CommitUsage(ctx context.Context, couponID uuid.UUID) error
}

type OrderSnapshot struct {
	ID       uuid.UUID
	Status   order.Status
	CouponID *uuid.UUID
	Items    []order.Item
}

type OrderRepository interface {
	// Create persists the order and its item snapshots in one transaction.
	Create(ctx context.Context, o *order.Order) (uuid.UUID, error)
	// UpdateStatus transitions the order only when it is still in the
	// expected state, so competing workflows cannot both claim it.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) error
	FindByID(ctx context.Context, id uuid.UUID) (*OrderSnapshot, error)
}

// UnitOfWork binds ports to one database transaction. An error returned from
// fn rolls back every mutation made through tx, so an order status can never
// commit without its ledger counterpart.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the transaction-scoped ports.
type Tx interface {
	Inventory() InventoryLedger
	Orders() OrderRepository
}

// EventPublisher is the fire-and-forget analytics sink. Implementations must
// never surface delivery failure to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

// StockShortageError names the product that could not be reserved so the UI
// can adjust the cart.
type StockShortageError struct {
	ProductID uuid.UUID
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}
