package pricing

import (
	"testing"

	"github.com/atelierhq/atelier/internal/models"
)

func invRecord(color string, qty int) models.InventoryRecord {
	c := color
	return models.InventoryRecord{Color: &c, QuantityAvailable: qty, IsVisible: true}
}

func TestNormalizer_TrimAndClamp(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		raw  RawSelection
		want Selection
	}{
		{
			name: "trims every text dimension",
			raw:  RawSelection{Style: "  slim ", Material: " cotton", DesignType: "print ", Color: " Black ", Size: " M ", Quantity: 3},
			want: Selection{Style: "slim", Material: "cotton", DesignType: "print", Color: "Black", Size: "M", Quantity: 3},
		},
		{
			name: "whitespace-only collapses to absent",
			raw:  RawSelection{Style: "   ", Quantity: 2},
			want: Selection{Quantity: 2},
		},
		{
			name: "zero quantity clamps to one",
			raw:  RawSelection{Quantity: 0},
			want: Selection{Quantity: 1},
		},
		{
			name: "negative quantity clamps to one",
			raw:  RawSelection{Quantity: -7},
			want: Selection{Quantity: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(nil, tt.raw, nil)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizer_SublimationColorRestriction(t *testing.T) {
	n := NewNormalizer()

	inventory := []models.InventoryRecord{
		invRecord("Heather White", 10),
		invRecord("Blanco Hueso", 5),
		invRecord("Navy", 20),
	}

	tests := []struct {
		name      string
		raw       RawSelection
		inventory []models.InventoryRecord
		wantColor string
	}{
		{
			name:      "qualifying color is kept",
			raw:       RawSelection{DesignType: "sublimation", Color: "Heather White", Quantity: 1},
			inventory: inventory,
			wantColor: "Heather White",
		},
		{
			name:      "non-qualifying color is replaced with first eligible",
			raw:       RawSelection{DesignType: "sublimation", Color: "Navy", Quantity: 1},
			inventory: inventory,
			wantColor: "Blanco Hueso",
		},
		{
			name:      "empty color is filled from eligible set",
			raw:       RawSelection{DesignType: "sublimation", Quantity: 1},
			inventory: inventory,
			wantColor: "Blanco Hueso",
		},
		{
			name:      "no eligible stock synthesizes the fallback",
			raw:       RawSelection{DesignType: "sublimation", Color: "Navy", Quantity: 1},
			inventory: []models.InventoryRecord{invRecord("Navy", 20)},
			wantColor: DefaultFallbackColor,
		},
		{
			name:      "spanish technique name is recognized",
			raw:       RawSelection{DesignType: "Sublimado", Color: "Navy", Quantity: 1},
			inventory: inventory,
			wantColor: "Blanco Hueso",
		},
		{
			name:      "other techniques leave color alone",
			raw:       RawSelection{DesignType: "embroidery", Color: "Navy", Quantity: 1},
			inventory: inventory,
			wantColor: "Navy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(nil, tt.raw, tt.inventory)
			if got.Color != tt.wantColor {
				t.Errorf("expected color %q, got %q", tt.wantColor, got.Color)
			}
		})
	}
}

func TestNormalizer_ProductDimensions(t *testing.T) {
	n := NewNormalizer()

	raw := RawSelection{Style: "slim", Material: "cotton", DesignType: "print", Color: "Black", Size: "M", Quantity: 2}

	tests := []struct {
		name    string
		product *models.Product
		want    Selection
	}{
		{
			name:    "product without styles or sizes drops both dimensions",
			product: &models.Product{HasStyles: false, HasSizes: false},
			want:    Selection{Material: "cotton", DesignType: "print", Color: "Black", Quantity: 2},
		},
		{
			name:    "product with styles only keeps style, drops size",
			product: &models.Product{HasStyles: true, HasSizes: false},
			want:    Selection{Style: "slim", Material: "cotton", DesignType: "print", Color: "Black", Quantity: 2},
		},
		{
			name:    "product with both dimensions keeps the selection intact",
			product: &models.Product{HasStyles: true, HasSizes: true},
			want:    Selection{Style: "slim", Material: "cotton", DesignType: "print", Color: "Black", Size: "M", Quantity: 2},
		},
		{
			name:    "nil product leaves dimensions alone",
			product: nil,
			want:    Selection{Style: "slim", Material: "cotton", DesignType: "print", Color: "Black", Size: "M", Quantity: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.product, raw, nil)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizer_NilColorRecordsIgnored(t *testing.T) {
	n := NewNormalizer()

	inventory := []models.InventoryRecord{
		{Color: nil, QuantityAvailable: 10, IsVisible: true},
		invRecord("  ", 5),
	}

	got := n.Normalize(nil, RawSelection{DesignType: "sublimation", Quantity: 1}, inventory)
	if got.Color != DefaultFallbackColor {
		t.Errorf("expected fallback color, got %q", got.Color)
	}
}

func TestNormalizer_CascadingReset(t *testing.T) {
	n := NewNormalizer()

	prev := RawSelection{DesignType: "print", Material: "cotton", Color: "Black", Size: "M", Quantity: 2}

	t.Run("technique change clears downstream fields", func(t *testing.T) {
		next := prev
		next.DesignType = "embroidery"

		got := n.Transition(prev, next)
		if got.Material != "" || got.Color != "" || got.Size != "" {
			t.Errorf("downstream fields not cleared: %+v", got)
		}
		if got.DesignType != "embroidery" {
			t.Errorf("design type lost: %+v", got)
		}
		if got.Quantity != 2 {
			t.Errorf("quantity must survive the reset, got %d", got.Quantity)
		}
	})

	t.Run("clears even nominally still-valid values", func(t *testing.T) {
		// "cotton" remains a plausible material for the new technique; it must
		// be cleared anyway so narrowing always cascades forward.
		next := prev
		next.DesignType = "sublimation"

		got := n.Transition(prev, next)
		if got.Material != "" {
			t.Errorf("expected material cleared, got %q", got.Material)
		}
	})

	t.Run("unchanged technique keeps selections", func(t *testing.T) {
		next := prev
		next.Color = "Red"

		got := n.Transition(prev, next)
		if got.Material != "cotton" || got.Color != "Red" || got.Size != "M" {
			t.Errorf("unexpected reset without technique change: %+v", got)
		}
	})
}
