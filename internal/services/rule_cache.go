package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/cache"
	"github.com/atelierhq/atelier/internal/logging"
	"github.com/atelierhq/atelier/internal/models"
	"github.com/atelierhq/atelier/internal/pricing"
)

// CachedRuleRepository fronts a pricing.Repository with a cache so the
// resolver's hot path stays off the database. Entries are JSON-encoded per
// product and expire on TTL; admin writes evict them early through the
// invalidator. Cache failures degrade to the backing repository, never to an
// error.
type CachedRuleRepository struct {
	backing  pricing.Repository
	provider cache.Provider
	ttl      time.Duration
	logger   *slog.Logger
}

func NewCachedRuleRepository(backing pricing.Repository, provider cache.Provider, ttl time.Duration, logger *slog.Logger) *CachedRuleRepository {
	return &CachedRuleRepository{
		backing:  backing,
		provider: provider,
		ttl:      ttl,
		logger:   logger,
	}
}

func (r *CachedRuleRepository) RulesForProduct(ctx context.Context, productID uuid.UUID) ([]models.PricingRule, error) {
	key := cache.RulesKey(productID)

	var rules []models.PricingRule
	if r.lookup(ctx, key, &rules) {
		return rules, nil
	}

	rules, err := r.backing.RulesForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, rules)
	return rules, nil
}

func (r *CachedRuleRepository) InventoryForProduct(ctx context.Context, productID uuid.UUID) ([]models.InventoryRecord, error) {
	key := cache.InventoryKey(productID)

	var records []models.InventoryRecord
	if r.lookup(ctx, key, &records) {
		return records, nil
	}

	records, err := r.backing.InventoryForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, records)
	return records, nil
}

func (r *CachedRuleRepository) lookup(ctx context.Context, key string, out any) bool {
	cached, err := r.provider.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return false
	}
	if err != nil {
		logging.FromContext(ctx, r.logger).Warn("rule cache read failed", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal([]byte(cached), out); err != nil {
		logging.FromContext(ctx, r.logger).Warn("rule cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (r *CachedRuleRepository) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		logging.FromContext(ctx, r.logger).Warn("rule cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.provider.Set(ctx, key, string(payload), r.ttl); err != nil {
		logging.FromContext(ctx, r.logger).Warn("rule cache write failed", "key", key, "error", err)
	}
}
