package response

import (
	"storefront-checkout/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type CouponPreviewResponse struct {
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason,omitempty"`
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`
}

func FromCouponPreview(rm *queries.CouponPreview) (*CouponPreviewResponse, error) {
	var resp CouponPreviewResponse
	if err := copier.Copy(&resp, rm); err != nil {
		return nil, err
	}
	return &resp, nil
}
