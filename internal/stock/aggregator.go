// Package stock derives per-attribute availability from inventory records.
// Everything here is a pure function over the snapshot it is handed; callers
// decide which records (visible, in-stock) to supply.
package stock

import (
	"sort"

	"github.com/atelierhq/atelier/internal/models"
)

// Colors returns the distinct color names present in the inventory, sorted.
// Records without a color cannot be selected by attribute and contribute
// nothing. Zero-stock colors stay listed so options never silently vanish
// mid-session; Available reports their count as zero.
func Colors(inventory []models.InventoryRecord) []string {
	seen := make(map[string]struct{})
	for _, record := range inventory {
		if record.Color == nil || *record.Color == "" {
			continue
		}
		seen[*record.Color] = struct{}{}
	}
	return sortedKeys(seen)
}

// Sizes returns the distinct sizes stocked under the given color, sorted.
// An empty forColor lists sizes across all colors.
func Sizes(inventory []models.InventoryRecord, forColor string) []string {
	seen := make(map[string]struct{})
	for _, record := range inventory {
		if record.Size == nil || *record.Size == "" {
			continue
		}
		if forColor != "" {
			if record.Color == nil || *record.Color != forColor {
				continue
			}
		}
		seen[*record.Size] = struct{}{}
	}
	return sortedKeys(seen)
}

// Available sums quantity_available across records matching the given color
// and size. An empty size aggregates over all sizes of the color, which is
// the per-color stock indicator the configurator displays.
func Available(inventory []models.InventoryRecord, color, size string) int {
	total := 0
	for _, record := range inventory {
		if record.Color == nil || *record.Color != color {
			continue
		}
		if size != "" {
			if record.Size == nil || *record.Size != size {
				continue
			}
		}
		total += record.QuantityAvailable
	}
	return total
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
