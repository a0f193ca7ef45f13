package commands

import (
	"context"

	"storefront-checkout/internal/domain/order"
	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errs.New("order not found")
	ErrInvalidOrderState = errs.New("order state does not permit this operation")
)

const (
	EventOrderCancelled = "order_cancelled"
	EventOrderFulfilled = "order_fulfilled"
)

// OrderLifecycleCommands is the entry point for the external
// payment/fulfillment workflows. Checkout itself never calls these; they
// exist so a cancellation or fulfillment always goes through the same ledger
// operations instead of touching inventory directly.
type OrderLifecycleCommands interface {
	// CancelOrder releases the reservations held by a not-yet-fulfilled
	// order and marks it CANCELLED.
	CancelOrder(ctx context.Context, orderID uuid.UUID) error
	// FulfillOrder consumes the reserved stock of a paid order and marks it
	// FULFILLED.
	FulfillOrder(ctx context.Context, orderID uuid.UUID) error
}

type orderLifecycleImpl struct {
	uow    UnitOfWork
	orders OrderRepository
	events EventPublisher
}

func NewOrderLifecycleCommands(
	uow UnitOfWork,
	orders OrderRepository,
	events EventPublisher,
) OrderLifecycleCommands {
	return &orderLifecycleImpl{
		uow:    uow,
		orders: orders,
		events: events,
	}
}

func (u *orderLifecycleImpl) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	snap, err := u.findOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !snap.Status.CanTransitionTo(order.StatusCancelled) {
		return errs.Mark(order.ErrInvalidTransition, ErrInvalidOrderState)
	}

	// The conditional status update claims the order; a concurrent cancel or
	// payment loses the race and rolls the whole transaction back, so the
	// status flip and the releases commit together or not at all.
	err = u.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Orders().UpdateStatus(ctx, orderID, snap.Status, order.StatusCancelled); err != nil {
			return err
		}
		for _, item := range snap.Items {
			if err := tx.Inventory().Release(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return errs.Mark(err, ErrInvalidOrderState)
		}
		return errs.Mark(err, ErrPersistenceFailed)
	}

	u.events.Publish(ctx, EventOrderCancelled, map[string]any{"order_id": orderID})
	return nil
}

func (u *orderLifecycleImpl) FulfillOrder(ctx context.Context, orderID uuid.UUID) error {
	snap, err := u.findOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if snap.Status != order.StatusPaid {
		return errs.Mark(order.ErrInvalidTransition, ErrInvalidOrderState)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Orders().UpdateStatus(ctx, orderID, order.StatusPaid, order.StatusFulfilled); err != nil {
			return err
		}
		for _, item := range snap.Items {
			if err := tx.Inventory().Commit(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return errs.Mark(err, ErrInvalidOrderState)
		}
		return errs.Mark(err, ErrPersistenceFailed)
	}

	u.events.Publish(ctx, EventOrderFulfilled, map[string]any{"order_id": orderID})
	return nil
}

func (u *orderLifecycleImpl) findOrder(ctx context.Context, orderID uuid.UUID) (*OrderSnapshot, error) {
	snap, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrOrderNotFound)
		}
		return nil, errs.Mark(err, ErrPersistenceFailed)
	}
	return snap, nil
}
