//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateTestProduct inserts a product with stock and returns its id.
func CreateTestProduct(t *testing.T, db DBLike, sku string, priceCents int64, onHand int32) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO products (id, sku, name, price_cents) VALUES ($1, $2, $3, $4) ON CONFLICT (sku) DO NOTHING",
		productID, sku, "Product "+sku, priceCents)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		require.NoError(t, db.QueryRow(ctx, "SELECT id FROM products WHERE sku = $1", sku).Scan(&productID))
	}

	_, err = db.Exec(ctx,
		"INSERT INTO inventory (product_id, on_hand, reserved) VALUES ($1, $2, 0) ON CONFLICT (product_id) DO UPDATE SET on_hand = $2, reserved = 0",
		productID, onHand)
	require.NoError(t, err)

	return productID
}

// CreateTestCoupon inserts a percent coupon and returns its id.
func CreateTestCoupon(t *testing.T, db DBLike, code string, pct int32, usageLimit *int32) uuid.UUID {
	t.Helper()

	couponID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO coupons (id, code, discount_type, discount_pct, active, usage_limit) VALUES ($1, $2, 'PERCENT', $3, true, $4) ON CONFLICT (code) DO NOTHING",
		couponID, code, pct, usageLimit)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		require.NoError(t, db.QueryRow(ctx, "SELECT id FROM coupons WHERE code = $1", code).Scan(&couponID))
	}

	return couponID
}

// StockCounts reads the ledger row for assertions.
func StockCounts(t *testing.T, db DBLike, productID uuid.UUID) (onHand, reserved int32) {
	t.Helper()

	err := db.QueryRow(context.Background(),
		"SELECT on_hand, reserved FROM inventory WHERE product_id = $1", productID).
		Scan(&onHand, &reserved)
	require.NoError(t, err)
	return onHand, reserved
}

// SeedReferenceData is a hook for data every test needs; the checkout schema
// has none, fixtures create what they use.
func SeedReferenceData(_ *pgxpool.Pool) error {
	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
