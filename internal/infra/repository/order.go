package repository

import (
	"context"

	"storefront-checkout/internal/domain/order"
	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/infra/db"
	"storefront-checkout/internal/pkg/pgconv"
	"storefront-checkout/internal/usecase/commands"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(db db.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const insertOrderSQL = `
	INSERT INTO orders (id, user_id, status, subtotal_cents, discount_cents,
	                    total_cents, currency, coupon_id, shipping, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const insertOrderItemSQL = `
	INSERT INTO order_items (order_id, product_id, sku, name, unit_price_cents, quantity)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Create writes the order and its item snapshots. Atomicity comes from the
// surrounding unit of work; call it through UnitOfWork.Within so a
// half-written order is never visible.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (uuid.UUID, error) {
	_, err := r.db.Exec(ctx, insertOrderSQL,
		o.ID(),
		o.UserID(),
		o.Status().String(),
		o.SubtotalCents(),
		o.DiscountCents(),
		o.TotalCents(),
		o.Currency(),
		o.CouponID(),
		o.Shipping(),
		o.CreatedAt(),
	)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create order", err)
	}

	for _, item := range o.Items() {
		_, err := r.db.Exec(ctx, insertOrderItemSQL,
			o.ID(),
			item.ProductID,
			item.SKU,
			item.Name,
			item.UnitPriceCents,
			item.Quantity,
		)
		if err != nil {
			return uuid.Nil, infra.WrapRepoErr("failed to create order item", err)
		}
	}

	return o.ID(), nil
}

const updateOrderStatusSQL = `
	UPDATE orders
	SET status = $3, updated_at = now()
	WHERE id = $1 AND status = $2`

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) error {
	tag, err := r.db.Exec(ctx, updateOrderStatusSQL, id, from.String(), to.String())
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return infra.WrapRepoErr("failed to check order record", err)
		}
		if !exists {
			return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
		}
		return infra.WrapRepoErr("order status changed concurrently", nil, infra.KindConflict)
	}
	return nil
}

const findOrderSnapshotSQL = `
	SELECT id, status, coupon_id
	FROM orders
	WHERE id = $1`

const findOrderItemsSQL = `
	SELECT product_id, sku, name, unit_price_cents, quantity
	FROM order_items
	WHERE order_id = $1
	ORDER BY id`

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.OrderSnapshot, error) {
	var (
		snap   commands.OrderSnapshot
		status string
	)
	err := r.db.QueryRow(ctx, findOrderSnapshotSQL, id).Scan(&snap.ID, &status, &snap.CouponID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	parsed, err := order.ParseStatus(status)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to parse order status", err)
	}
	snap.Status = parsed

	rows, err := r.db.Query(ctx, findOrderItemsSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ProductID, &item.SKU, &item.Name, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		snap.Items = append(snap.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order items", err)
	}

	return &snap, nil
}
