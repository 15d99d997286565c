package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a configurable garment offered in the storefront. BasePrice is the
// fallback unit price when no pricing rule matches a selection.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	IsActive    bool            `json:"is_active"`
	HasStyles   bool            `json:"has_styles"`
	HasSizes    bool            `json:"has_sizes"`
	Styles      []string        `json:"styles"`
	Materials   []string        `json:"materials"`
	DesignTypes []string        `json:"design_types"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductUpdate is a partial admin edit. Nil fields keep their current value.
type ProductUpdate struct {
	Name      *string
	Category  *string
	BasePrice *decimal.Decimal
	IsActive  *bool
}
