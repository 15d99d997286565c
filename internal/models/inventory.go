package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryRecord tracks stocked quantity for one color/size combination of a
// product. Records with zero quantity or IsVisible false are excluded from
// customer-facing option lists but are never deleted.
type InventoryRecord struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	Color             *string   `json:"color"`
	Size              *string   `json:"size"`
	QuantityAvailable int       `json:"quantity_available"`
	IsVisible         bool      `json:"is_visible"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
