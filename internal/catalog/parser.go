package catalog

// Package catalog parses the atelier.yaml catalog file: products, their
// pricing rules, and starting inventory. The file seeds the database in dev
// and feeds the in-memory Repository in tests and demos.

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/atelierhq/atelier/internal/models"
)

type Catalog struct {
	Products []ProductEntry `yaml:"products"`
}

type ProductEntry struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Category    string           `yaml:"category"`
	Description string           `yaml:"description"`
	BasePrice   string           `yaml:"base_price"`
	IsActive    *bool            `yaml:"is_active"`
	HasStyles   bool             `yaml:"has_styles"`
	HasSizes    bool             `yaml:"has_sizes"`
	Styles      []string         `yaml:"styles"`
	Materials   []string         `yaml:"materials"`
	DesignTypes []string         `yaml:"design_types"`
	Images      []string         `yaml:"images"`
	Rules       []RuleEntry      `yaml:"rules"`
	Inventory   []InventoryEntry `yaml:"inventory"`
}

type RuleEntry struct {
	ID         string  `yaml:"id"`
	Style      *string `yaml:"style"`
	Material   *string `yaml:"material"`
	DesignType *string `yaml:"design_type"`
	MinQty     *int    `yaml:"min_qty"`
	MaxQty     *int    `yaml:"max_qty"`
	Price      string  `yaml:"price"`
}

type InventoryEntry struct {
	ID                string  `yaml:"id"`
	Color             *string `yaml:"color"`
	Size              *string `yaml:"size"`
	QuantityAvailable int     `yaml:"quantity_available"`
	IsVisible         *bool   `yaml:"is_visible"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &catalog, nil
}

func (p *Parser) ParseFile(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return p.Parse(content)
}

// Product converts a catalog entry into the domain record. A missing id is
// derived deterministically from the product name so repeated seeding is
// idempotent.
func (e ProductEntry) Product() (models.Product, error) {
	id, err := entryID(e.ID, "product:"+e.Name)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %q: %w", e.Name, err)
	}

	basePrice, err := parsePrice(e.BasePrice)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %q base_price: %w", e.Name, err)
	}

	active := true
	if e.IsActive != nil {
		active = *e.IsActive
	}

	now := time.Now().UTC()
	return models.Product{
		ID:          id,
		Name:        e.Name,
		Category:    e.Category,
		Description: e.Description,
		BasePrice:   basePrice,
		IsActive:    active,
		HasStyles:   e.HasStyles,
		HasSizes:    e.HasSizes,
		Styles:      e.Styles,
		Materials:   e.Materials,
		DesignTypes: e.DesignTypes,
		Images:      e.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (e RuleEntry) Rule(productID uuid.UUID, ordinal int) (models.PricingRule, error) {
	id, err := entryID(e.ID, fmt.Sprintf("rule:%s:%d", productID, ordinal))
	if err != nil {
		return models.PricingRule{}, err
	}

	price, err := parsePrice(e.Price)
	if err != nil {
		return models.PricingRule{}, fmt.Errorf("rule %s price: %w", id, err)
	}

	return models.PricingRule{
		ID:         id,
		ProductID:  productID,
		Style:      e.Style,
		Material:   e.Material,
		DesignType: e.DesignType,
		MinQty:     e.MinQty,
		MaxQty:     e.MaxQty,
		Price:      price,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (e InventoryEntry) Record(productID uuid.UUID, ordinal int) (models.InventoryRecord, error) {
	id, err := entryID(e.ID, fmt.Sprintf("inventory:%s:%d", productID, ordinal))
	if err != nil {
		return models.InventoryRecord{}, err
	}

	visible := true
	if e.IsVisible != nil {
		visible = *e.IsVisible
	}

	now := time.Now().UTC()
	return models.InventoryRecord{
		ID:                id,
		ProductID:         productID,
		Color:             e.Color,
		Size:              e.Size,
		QuantityAvailable: e.QuantityAvailable,
		IsVisible:         visible,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func entryID(raw, seed string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("price is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	return price, nil
}
