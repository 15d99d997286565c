package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/models"
	"github.com/atelierhq/atelier/internal/pricing"
	"github.com/atelierhq/atelier/internal/stock"
)

// productUpdater applies partial admin edits. *db.ProductStore and
// *catalog.Repository both satisfy it.
type productUpdater interface {
	Update(ctx context.Context, id uuid.UUID, update models.ProductUpdate) (*models.Product, error)
}

// ProductService serves the storefront catalog: product listings, the
// per-product option sets the configurator renders, and admin edits.
type ProductService struct {
	products ProductRepository
	rules    pricing.Repository
	updater  productUpdater
}

func NewProductService(products ProductRepository, rules pricing.Repository, updater productUpdater) *ProductService {
	return &ProductService{products: products, rules: rules, updater: updater}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.ListActiveProducts(ctx)
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products.GetProduct(ctx, id)
}

// UpdateProduct applies a partial admin edit. A negative base price never
// reaches the store.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, update models.ProductUpdate) (*models.Product, error) {
	if update.BasePrice != nil && update.BasePrice.IsNegative() {
		return nil, fmt.Errorf("%w: base price must be zero or positive", pricing.ErrInvalidSelection)
	}
	return s.updater.Update(ctx, id, update)
}

// ColorOption is one selectable color with its stocked sizes. Available is
// the quantity summed across the color's sizes; zero keeps the option listed
// but lets the UI mark it out of stock.
type ColorOption struct {
	Name      string       `json:"name"`
	Available int          `json:"available"`
	Sizes     []SizeOption `json:"sizes"`
}

type SizeOption struct {
	Name      string `json:"name"`
	Available int    `json:"available"`
}

// ProductOptions is everything the configurator needs to render its
// dropdowns for one product.
type ProductOptions struct {
	Styles      []string      `json:"styles"`
	Materials   []string      `json:"materials"`
	DesignTypes []string      `json:"design_types"`
	Colors      []ColorOption `json:"colors"`
}

func (s *ProductService) ProductOptions(ctx context.Context, id uuid.UUID) (*ProductOptions, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	inventory, err := s.rules.InventoryForProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	options := &ProductOptions{
		Styles:      product.Styles,
		Materials:   product.Materials,
		DesignTypes: product.DesignTypes,
		Colors:      make([]ColorOption, 0),
	}

	for _, color := range stock.Colors(inventory) {
		option := ColorOption{
			Name:      color,
			Available: stock.Available(inventory, color, ""),
			Sizes:     make([]SizeOption, 0),
		}
		for _, size := range stock.Sizes(inventory, color) {
			option.Sizes = append(option.Sizes, SizeOption{
				Name:      size,
				Available: stock.Available(inventory, color, size),
			})
		}
		options.Colors = append(options.Colors, option)
	}

	return options, nil
}
