package readstore

import (
	"context"

	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/infra/db"
	"storefront-checkout/internal/pkg/pgconv"
	"storefront-checkout/internal/usecase/queries"
)

type CouponReadStore struct {
	db db.DBTX
}

func NewCouponReadStore(db db.DBTX) *CouponReadStore {
	return &CouponReadStore{db: db}
}

const findCouponViewSQL = `
	SELECT id, code, discount_type, discount_pct, discount_cents,
	       active, starts_at, ends_at, usage_limit, uses
	FROM coupons
	WHERE code = $1`

func (s *CouponReadStore) FindByCode(ctx context.Context, code string) (*queries.CouponView, error) {
	var view queries.CouponView
	err := s.db.QueryRow(ctx, findCouponViewSQL, code).Scan(
		&view.ID,
		&view.Code,
		&view.DiscountType,
		&view.DiscountPct,
		&view.DiscountCents,
		&view.Active,
		&view.StartsAt,
		&view.EndsAt,
		&view.UsageLimit,
		&view.Uses,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon", err)
	}
	return &view, nil
}
