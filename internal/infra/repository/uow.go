package repository

import (
	"context"

	"storefront-checkout/internal/infra/db"
	"storefront-checkout/internal/usecase/commands"

	"github.com/jackc/pgx/v5/pgxpool"
)

const uowMaxRetries = 2

// PostgresUoW hands the command layer repositories bound to one transaction.
type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) *PostgresUoW {
	return &PostgresUoW{pool: pool}
}

func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx commands.Tx) error) error {
	_, err := db.RunInTxWithRetry(ctx, u.pool, uowMaxRetries, func(dbtx db.DBTX) (struct{}, error) {
		return struct{}{}, fn(ctx, pgTx{dbtx: dbtx})
	})
	return err
}

type pgTx struct {
	dbtx db.DBTX
}

func (t pgTx) Inventory() commands.InventoryLedger { return NewInventoryRepository(t.dbtx) }

func (t pgTx) Orders() commands.OrderRepository { return NewOrderRepository(t.dbtx) }
