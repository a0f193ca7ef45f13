package readstore

import (
	"context"

	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/infra/db"
	"storefront-checkout/internal/pkg/pgconv"
	"storefront-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

type InventoryReadStore struct {
	db db.DBTX
}

func NewInventoryReadStore(db db.DBTX) *InventoryReadStore {
	return &InventoryReadStore{db: db}
}

const findInventoryViewSQL = `
	SELECT product_id, on_hand, reserved, on_hand - reserved AS available, updated_at
	FROM inventory
	WHERE product_id = $1`

func (s *InventoryReadStore) FindByProduct(ctx context.Context, productID uuid.UUID) (*queries.InventoryView, error) {
	var view queries.InventoryView
	err := s.db.QueryRow(ctx, findInventoryViewSQL, productID).Scan(
		&view.ProductID,
		&view.OnHand,
		&view.Reserved,
		&view.Available,
		&view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("inventory record not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find inventory record", err)
	}
	return &view, nil
}
