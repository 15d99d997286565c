package pricing

import (
	"sort"
	"strings"

	"github.com/atelierhq/atelier/internal/models"
)

// DefaultFallbackColor is synthesized when a sublimation-style technique is
// selected and no stocked color qualifies for it.
const DefaultFallbackColor = "White"

var (
	defaultSublimationTechniques = []string{"sublimation", "sublimado", "sublimación"}
	defaultSublimationColorTerms = []string{"white", "blanco"}
)

// Normalizer canonicalizes a raw configurator selection into the resolver's
// matching key. It is pure: no I/O beyond the inventory snapshot it is handed.
type Normalizer struct {
	sublimationTechniques map[string]struct{}
	colorTerms            []string
	fallbackColor         string
}

type NormalizerOption func(*Normalizer)

// WithSublimationTechniques overrides the technique names that restrict
// eligible colors to the sublimation-capable set.
func WithSublimationTechniques(names ...string) NormalizerOption {
	return func(n *Normalizer) {
		n.sublimationTechniques = make(map[string]struct{}, len(names))
		for _, name := range names {
			n.sublimationTechniques[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
		}
	}
}

// WithSublimationColorTerms overrides the substrings that mark a color name as
// sublimation-capable.
func WithSublimationColorTerms(terms ...string) NormalizerOption {
	return func(n *Normalizer) {
		n.colorTerms = append([]string(nil), terms...)
	}
}

// WithFallbackColor overrides the color synthesized when no stocked color
// qualifies for a sublimation-style technique.
func WithFallbackColor(color string) NormalizerOption {
	return func(n *Normalizer) {
		n.fallbackColor = color
	}
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		colorTerms:    append([]string(nil), defaultSublimationColorTerms...),
		fallbackColor: DefaultFallbackColor,
	}
	WithSublimationTechniques(defaultSublimationTechniques...)(n)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize trims every text attribute, clamps quantity to at least 1, drops
// dimensions the product does not offer, and applies the cross-field color
// constraint for sublimation-style techniques. The inventory snapshot supplies
// the candidate color set for that constraint.
func (n *Normalizer) Normalize(product *models.Product, raw RawSelection, inventory []models.InventoryRecord) Selection {
	sel := Selection{
		Style:      strings.TrimSpace(raw.Style),
		Material:   strings.TrimSpace(raw.Material),
		DesignType: strings.TrimSpace(raw.DesignType),
		Color:      strings.TrimSpace(raw.Color),
		Size:       strings.TrimSpace(raw.Size),
		Quantity:   raw.Quantity,
	}
	if sel.Quantity < 1 {
		sel.Quantity = 1
	}

	if product != nil {
		if !product.HasStyles {
			sel.Style = ""
		}
		if !product.HasSizes {
			sel.Size = ""
		}
	}

	if n.requiresSublimationColor(sel.DesignType) {
		sel.Color = n.restrictColor(sel.Color, inventory)
	}

	return sel
}

// Transition applies the cascading reset rule between two raw selection
// states: when the design technique changes, material, color and size are
// cleared so a stale, now-invalid combination can never survive the change.
func (n *Normalizer) Transition(prev, next RawSelection) RawSelection {
	prevTechnique := strings.TrimSpace(prev.DesignType)
	nextTechnique := strings.TrimSpace(next.DesignType)
	if prevTechnique == nextTechnique {
		return next
	}

	next.Material = ""
	next.Color = ""
	next.Size = ""
	return next
}

func (n *Normalizer) requiresSublimationColor(designType string) bool {
	if designType == "" {
		return false
	}
	_, ok := n.sublimationTechniques[strings.ToLower(designType)]
	return ok
}

// restrictColor keeps the chosen color when it qualifies, otherwise replaces
// it with the first eligible stocked color, or with the canonical fallback
// when nothing stocked qualifies. The selection never dead-ends on an empty
// color dimension.
func (n *Normalizer) restrictColor(chosen string, inventory []models.InventoryRecord) string {
	eligible := n.eligibleColors(inventory)

	if chosen != "" {
		if _, ok := eligible[chosen]; ok {
			return chosen
		}
	}

	if len(eligible) == 0 {
		return n.fallbackColor
	}

	names := make([]string, 0, len(eligible))
	for name := range eligible {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

func (n *Normalizer) eligibleColors(inventory []models.InventoryRecord) map[string]struct{} {
	eligible := make(map[string]struct{})
	for _, record := range inventory {
		if record.Color == nil {
			continue
		}
		name := strings.TrimSpace(*record.Color)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		for _, term := range n.colorTerms {
			if strings.Contains(lower, strings.ToLower(term)) {
				eligible[name] = struct{}{}
				break
			}
		}
	}
	return eligible
}
