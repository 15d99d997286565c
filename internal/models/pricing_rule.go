package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingRule prices one combination of selection attributes for a product.
// A nil attribute field is a wildcard for that dimension. A nil quantity bound
// leaves that side of the range open.
type PricingRule struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Style      *string         `json:"style"`
	Material   *string         `json:"material"`
	DesignType *string         `json:"design_type"`
	MinQty     *int            `json:"min_qty"`
	MaxQty     *int            `json:"max_qty"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
}
