package catalog

import (
	"strings"
	"testing"
)

func validCatalog() *Catalog {
	material := "DTF"
	minQty, maxQty := 1, 49
	return &Catalog{
		Products: []ProductEntry{
			{
				Name:      "Classic Tee",
				BasePrice: "20.00",
				Rules: []RuleEntry{
					{Material: &material, MinQty: &minQty, MaxQty: &maxQty, Price: "8.00"},
				},
				Inventory: []InventoryEntry{
					{Color: strPtr("Black"), Size: strPtr("M"), QuantityAvailable: 10},
				},
			},
		},
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator()

	if err := validator.Validate(validCatalog()); err != nil {
		t.Fatalf("valid catalog rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Catalog)
		wantErr string
	}{
		{
			name:    "empty catalog",
			mutate:  func(c *Catalog) { c.Products = nil },
			wantErr: "at least one product",
		},
		{
			name:    "missing product name",
			mutate:  func(c *Catalog) { c.Products[0].Name = "  " },
			wantErr: "name is required",
		},
		{
			name: "duplicate product name",
			mutate: func(c *Catalog) {
				c.Products = append(c.Products, c.Products[0])
			},
			wantErr: "duplicate product name",
		},
		{
			name:    "negative base price",
			mutate:  func(c *Catalog) { c.Products[0].BasePrice = "-1.00" },
			wantErr: "zero or positive",
		},
		{
			name:    "negative rule price",
			mutate:  func(c *Catalog) { c.Products[0].Rules[0].Price = "-8.00" },
			wantErr: "zero or positive",
		},
		{
			name: "inverted quantity range",
			mutate: func(c *Catalog) {
				c.Products[0].Rules[0].MinQty = intPtr(50)
				c.Products[0].Rules[0].MaxQty = intPtr(10)
			},
			wantErr: "exceeds max_qty",
		},
		{
			name:    "blank attribute is not a wildcard",
			mutate:  func(c *Catalog) { c.Products[0].Rules[0].Material = strPtr("  ") },
			wantErr: "omitted entirely",
		},
		{
			name:    "negative inventory quantity",
			mutate:  func(c *Catalog) { c.Products[0].Inventory[0].QuantityAvailable = -1 },
			wantErr: "quantity must be zero or positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := validCatalog()
			tt.mutate(catalog)

			err := validator.Validate(catalog)
			if err == nil {
				t.Fatal("expected validation error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err)
			}
		})
	}
}
