package repository

import (
	"context"

	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/infra/db"

	"github.com/google/uuid"
)

// InventoryRepository implements the per-product reservation ledger. Every
// mutation is a single conditional UPDATE: the guard in the WHERE clause and
// the increment execute as one atomic row operation, so two checkouts racing
// for the last unit can never both succeed. There is no read-then-write
// fallback path.
type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(db db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

const reserveStockSQL = `
	UPDATE inventory
	SET reserved = reserved + $2, updated_at = now()
	WHERE product_id = $1 AND on_hand - reserved >= $2`

func (r *InventoryRepository) Reserve(ctx context.Context, productID uuid.UUID, qty int32) error {
	tag, err := r.db.Exec(ctx, reserveStockSQL, productID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve stock", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, productID, "insufficient stock to reserve")
	}
	return nil
}

// Release floors reserved at zero rather than failing: compensation must
// always succeed, and a double release is bounded by the floor.
const releaseStockSQL = `
	UPDATE inventory
	SET reserved = GREATEST(reserved - $2, 0), updated_at = now()
	WHERE product_id = $1`

func (r *InventoryRepository) Release(ctx context.Context, productID uuid.UUID, qty int32) error {
	tag, err := r.db.Exec(ctx, releaseStockSQL, productID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to release stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("inventory record not found", nil, infra.KindNotFound)
	}
	return nil
}

const commitStockSQL = `
	UPDATE inventory
	SET on_hand = on_hand - $2, reserved = reserved - $2, updated_at = now()
	WHERE product_id = $1 AND on_hand >= $2 AND reserved >= $2`

func (r *InventoryRepository) Commit(ctx context.Context, productID uuid.UUID, qty int32) error {
	tag, err := r.db.Exec(ctx, commitStockSQL, productID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to commit stock", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, productID, "reserved stock smaller than commit quantity")
	}
	return nil
}

// classifyMiss distinguishes a missing ledger row from a guard that did not
// hold, since the conditional UPDATE reports both as zero rows.
func (r *InventoryRepository) classifyMiss(ctx context.Context, productID uuid.UUID, conflictMsg string) error {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return infra.WrapRepoErr("failed to check inventory record", err)
	}
	if !exists {
		return infra.WrapRepoErr("inventory record not found", nil, infra.KindNotFound)
	}
	return infra.WrapRepoErr(conflictMsg, nil, infra.KindConflict)
}
