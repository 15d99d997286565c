package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/models"
	"github.com/atelierhq/atelier/internal/pricing"
)

// Repository is an in-memory pricing.Repository backed by a parsed catalog
// file. It backs demo mode and tests; production reads go through the
// database stores.
type Repository struct {
	products  map[uuid.UUID]models.Product
	rules     map[uuid.UUID][]models.PricingRule
	inventory map[uuid.UUID][]models.InventoryRecord
}

func NewRepository(catalog *Catalog) (*Repository, error) {
	repo := &Repository{
		products:  make(map[uuid.UUID]models.Product),
		rules:     make(map[uuid.UUID][]models.PricingRule),
		inventory: make(map[uuid.UUID][]models.InventoryRecord),
	}

	for _, entry := range catalog.Products {
		product, err := entry.Product()
		if err != nil {
			return nil, err
		}
		if _, exists := repo.products[product.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %s", product.ID)
		}
		repo.products[product.ID] = product

		for i, ruleEntry := range entry.Rules {
			rule, err := ruleEntry.Rule(product.ID, i)
			if err != nil {
				return nil, fmt.Errorf("product %q: %w", product.Name, err)
			}
			repo.rules[product.ID] = append(repo.rules[product.ID], rule)
		}

		for i, invEntry := range entry.Inventory {
			record, err := invEntry.Record(product.ID, i)
			if err != nil {
				return nil, fmt.Errorf("product %q: %w", product.Name, err)
			}
			repo.inventory[product.ID] = append(repo.inventory[product.ID], record)
		}
	}

	return repo, nil
}

func (r *Repository) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pricing.ErrNotFound, id)
	}
	return &product, nil
}

func (r *Repository) ListActiveProducts(_ context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		if product.IsActive {
			products = append(products, product)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

// Update applies a partial product edit in memory. Demo-mode edits do not
// survive a restart; the catalog file is the source of truth there.
func (r *Repository) Update(_ context.Context, id uuid.UUID, update models.ProductUpdate) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pricing.ErrNotFound, id)
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.BasePrice != nil {
		product.BasePrice = *update.BasePrice
	}
	if update.IsActive != nil {
		product.IsActive = *update.IsActive
	}
	product.UpdatedAt = time.Now()

	r.products[id] = product
	return &product, nil
}

func (r *Repository) RulesForProduct(_ context.Context, productID uuid.UUID) ([]models.PricingRule, error) {
	if _, ok := r.products[productID]; !ok {
		return nil, fmt.Errorf("%w: %s", pricing.ErrNotFound, productID)
	}
	return append([]models.PricingRule(nil), r.rules[productID]...), nil
}

func (r *Repository) InventoryForProduct(_ context.Context, productID uuid.UUID) ([]models.InventoryRecord, error) {
	if _, ok := r.products[productID]; !ok {
		return nil, fmt.Errorf("%w: %s", pricing.ErrNotFound, productID)
	}

	records := make([]models.InventoryRecord, 0, len(r.inventory[productID]))
	for _, record := range r.inventory[productID] {
		if !record.IsVisible {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
