package response

import (
	"time"

	"storefront-checkout/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type InventoryResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	OnHand    int32     `json:"on_hand"`
	Reserved  int32     `json:"reserved"`
	Available int32     `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromInventoryView(rm *queries.InventoryView) (*InventoryResponse, error) {
	var resp InventoryResponse
	if err := copier.Copy(&resp, rm); err != nil {
		return nil, err
	}
	return &resp, nil
}
