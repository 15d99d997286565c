package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/models"
)

// ProductRepository is the catalog read surface the services consume. Both
// the database stores and the in-memory catalog repository satisfy it.
type ProductRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
}
