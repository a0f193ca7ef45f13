package repository

import (
	"context"

	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/infra/db"
	"storefront-checkout/internal/pkg/pgconv"
	"storefront-checkout/internal/usecase/commands"

	"github.com/google/uuid"
)

type CouponRepository struct {
	db db.DBTX
}

func NewCouponRepository(db db.DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

const findCouponByCodeSQL = `
	SELECT id, code, discount_type, discount_pct, discount_cents,
	       active, starts_at, ends_at, usage_limit, uses
	FROM coupons
	WHERE code = $1`

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*commands.CouponSnapshot, error) {
	var snap commands.CouponSnapshot
	err := r.db.QueryRow(ctx, findCouponByCodeSQL, code).Scan(
		&snap.ID,
		&snap.Code,
		&snap.DiscountType,
		&snap.DiscountPct,
		&snap.DiscountCents,
		&snap.Active,
		&snap.StartsAt,
		&snap.EndsAt,
		&snap.UsageLimit,
		&snap.Uses,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by code", err)
	}
	return &snap, nil
}

// The guard repeats the validation-time cap check inside the increment, so
// the final accepted count for a capped coupon never exceeds usage_limit no
// matter how many checkouts validated it concurrently.
const commitCouponUsageSQL = `
	UPDATE coupons
	SET uses = uses + 1, updated_at = now()
	WHERE id = $1 AND (usage_limit IS NULL OR uses < usage_limit)`

func (r *CouponRepository) CommitUsage(ctx context.Context, couponID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, commitCouponUsageSQL, couponID)
	if err != nil {
		return infra.WrapRepoErr("failed to commit coupon usage", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM coupons WHERE id = $1)`, couponID).Scan(&exists)
		if err != nil {
			return infra.WrapRepoErr("failed to check coupon record", err)
		}
		if !exists {
			return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
		}
		return infra.WrapRepoErr("coupon usage limit reached", nil, infra.KindConflict)
	}
	return nil
}
