package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/cache"
	"github.com/atelierhq/atelier/internal/db"
	"github.com/atelierhq/atelier/internal/logging"
)

type inventoryStore interface {
	ListForProduct(ctx context.Context, productID uuid.UUID, onlyVisible bool) ([]db.InventoryRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*db.InventoryRecord, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*db.InventoryRecord, error)
	SetVisibility(ctx context.Context, id uuid.UUID, visible bool) (*db.InventoryRecord, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, key string)
}

// InventoryService is the admin stock surface. Every write evicts the
// product's cached inventory so in-flight configurators see the change on
// their next resolution.
type InventoryService struct {
	store       inventoryStore
	invalidator cacheInvalidator
	logger      *slog.Logger
}

func NewInventoryService(store inventoryStore, invalidator cacheInvalidator, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		store:       store,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *InventoryService) ListForProduct(ctx context.Context, productID uuid.UUID, onlyVisible bool) ([]db.InventoryRecord, error) {
	return s.store.ListForProduct(ctx, productID, onlyVisible)
}

func (s *InventoryService) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*db.InventoryRecord, error) {
	record, err := s.store.AdjustQuantity(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, record.ProductID)
	return record, nil
}

func (s *InventoryService) SetVisibility(ctx context.Context, id uuid.UUID, visible bool) (*db.InventoryRecord, error) {
	record, err := s.store.SetVisibility(ctx, id, visible)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, record.ProductID)
	return record, nil
}

func (s *InventoryService) evict(ctx context.Context, productID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.Invalidate(ctx, cache.InventoryKey(productID))
	logging.FromContext(ctx, s.logger).Debug("inventory cache evicted", "product_id", productID)
}
