package catalog

// Package catalog provides catalog file validation.

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(catalog *Catalog) error {
	if catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	if len(catalog.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	names := make(map[string]bool)
	for i, product := range catalog.Products {
		if err := v.validateProduct(&product); err != nil {
			return fmt.Errorf("product %d validation failed: %w", i, err)
		}

		key := strings.ToLower(strings.TrimSpace(product.Name))
		if names[key] {
			return fmt.Errorf("duplicate product name: %s", product.Name)
		}
		names[key] = true
	}

	return nil
}

func (v *Validator) validateProduct(product *ProductEntry) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	basePrice, err := parsePrice(product.BasePrice)
	if err != nil {
		return err
	}
	if basePrice.IsNegative() {
		return fmt.Errorf("base price must be zero or positive")
	}

	for i, rule := range product.Rules {
		if err := v.validateRule(&rule); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}

	for i, record := range product.Inventory {
		if record.QuantityAvailable < 0 {
			return fmt.Errorf("inventory %d: quantity must be zero or positive", i)
		}
	}

	return nil
}

func (v *Validator) validateRule(rule *RuleEntry) error {
	price, err := parsePrice(rule.Price)
	if err != nil {
		return err
	}
	if price.Cmp(decimal.Zero) < 0 {
		return fmt.Errorf("rule price must be zero or positive")
	}

	if rule.MinQty != nil && *rule.MinQty < 1 {
		return fmt.Errorf("min_qty must be at least 1")
	}
	if rule.MaxQty != nil && *rule.MaxQty < 1 {
		return fmt.Errorf("max_qty must be at least 1")
	}
	if rule.MinQty != nil && rule.MaxQty != nil && *rule.MinQty > *rule.MaxQty {
		return fmt.Errorf("min_qty %d exceeds max_qty %d", *rule.MinQty, *rule.MaxQty)
	}

	if rule.Style != nil && strings.TrimSpace(*rule.Style) == "" {
		return fmt.Errorf("style must be omitted entirely to act as a wildcard")
	}
	if rule.Material != nil && strings.TrimSpace(*rule.Material) == "" {
		return fmt.Errorf("material must be omitted entirely to act as a wildcard")
	}
	if rule.DesignType != nil && strings.TrimSpace(*rule.DesignType) == "" {
		return fmt.Errorf("design_type must be omitted entirely to act as a wildcard")
	}

	return nil
}
