package readstore

import (
	"context"

	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/infra/db"
	"storefront-checkout/internal/pkg/pgconv"
	"storefront-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

const findOrderViewSQL = `
	SELECT o.id, o.user_id, o.status, o.subtotal_cents, o.discount_cents,
	       o.total_cents, o.currency, o.coupon_id, c.code, o.shipping, o.created_at
	FROM orders o
	LEFT JOIN coupons c ON c.id = o.coupon_id
	WHERE o.id = $1`

const findOrderItemViewsSQL = `
	SELECT product_id, sku, name, unit_price_cents, quantity
	FROM order_items
	WHERE order_id = $1
	ORDER BY id`

func (s *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	var view queries.OrderView
	err := s.db.QueryRow(ctx, findOrderViewSQL, id).Scan(
		&view.ID,
		&view.UserID,
		&view.Status,
		&view.SubtotalCents,
		&view.DiscountCents,
		&view.TotalCents,
		&view.Currency,
		&view.CouponID,
		&view.CouponCode,
		&view.Shipping,
		&view.CreatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	rows, err := s.db.Query(ctx, findOrderItemViewsSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item queries.OrderItemView
		if err := rows.Scan(&item.ProductID, &item.SKU, &item.Name, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		view.Items = append(view.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order items", err)
	}

	return &view, nil
}
