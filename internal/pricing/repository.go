package pricing

import (
	"context"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/models"
)

// Repository is the read-only accessor over a product's pricing rules and
// inventory. Implementations return ErrNotFound for an unknown product id and
// wrap connectivity failures in ErrTransient. An empty rule set is not an
// error; the resolver falls through to the base price.
type Repository interface {
	RulesForProduct(ctx context.Context, productID uuid.UUID) ([]models.PricingRule, error)
	InventoryForProduct(ctx context.Context, productID uuid.UUID) ([]models.InventoryRecord, error)
}
