package queries

import (
	"context"

	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrProductNotFound = errs.New("product not found in inventory")

type InventoryReadStore interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) (*InventoryView, error)
}

type InventoryQueries interface {
	GetAvailability(ctx context.Context, productID uuid.UUID) (*InventoryView, error)
}

type inventoryQueriesImpl struct {
	readStore InventoryReadStore
}

func NewInventoryQueries(readStore InventoryReadStore) InventoryQueries {
	return &inventoryQueriesImpl{readStore: readStore}
}

func (q *inventoryQueriesImpl) GetAvailability(ctx context.Context, productID uuid.UUID) (*InventoryView, error) {
	view, err := q.readStore.FindByProduct(ctx, productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrProductNotFound)
		}
		return nil, err
	}
	return view, nil
}
