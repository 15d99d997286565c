package pricing

import (
	"fmt"
	"math"

	"github.com/atelierhq/atelier/internal/models"
)

// Resolver finds the best-matching pricing rule for a normalized selection.
// Resolution is a pure function of its inputs: safe to call on every
// keystroke, no I/O, no hidden state.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the unit price for the selection. Among all matching rules
// the winner is chosen by, in order: fewest wildcard dimensions, narrowest
// quantity range (an unbounded side counts as infinitely wide), lowest price,
// lowest rule id. The ordering is total, so resolution is deterministic even
// for duplicate rules. When no rule matches, the product's base price is
// returned with a nil rule id; that is the documented fallback, not an error.
func (r *Resolver) Resolve(product *models.Product, sel Selection, rules []models.PricingRule) (Quote, error) {
	if product == nil {
		return Quote{}, fmt.Errorf("%w: product is required", ErrInvalidSelection)
	}
	if sel.Quantity < 1 {
		return Quote{}, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidSelection, sel.Quantity)
	}

	var best *models.PricingRule
	for i := range rules {
		rule := &rules[i]
		if !matches(rule, sel) {
			continue
		}
		if best == nil || betterThan(rule, best) {
			best = rule
		}
	}

	if best == nil {
		return Quote{UnitPrice: product.BasePrice, RuleID: nil}, nil
	}

	ruleID := best.ID
	return Quote{UnitPrice: best.Price, RuleID: &ruleID}, nil
}

// matches reports whether a rule is a candidate for the selection: every
// attribute dimension is a wildcard or an exact, case-sensitive match, and the
// quantity falls inside the rule's inclusive range.
func matches(rule *models.PricingRule, sel Selection) bool {
	if !dimensionMatches(rule.Style, sel.Style) {
		return false
	}
	if !dimensionMatches(rule.Material, sel.Material) {
		return false
	}
	if !dimensionMatches(rule.DesignType, sel.DesignType) {
		return false
	}
	if rule.MinQty != nil && sel.Quantity < *rule.MinQty {
		return false
	}
	if rule.MaxQty != nil && sel.Quantity > *rule.MaxQty {
		return false
	}
	return true
}

func dimensionMatches(ruleValue *string, selValue string) bool {
	if ruleValue == nil {
		return true
	}
	return *ruleValue == selValue
}

// betterThan reports whether candidate outranks incumbent under the
// specificity ordering. ID comparison last makes the ordering total.
func betterThan(candidate, incumbent *models.PricingRule) bool {
	cw, iw := wildcardCount(candidate), wildcardCount(incumbent)
	if cw != iw {
		return cw < iw
	}

	crw, irw := rangeWidth(candidate), rangeWidth(incumbent)
	if crw != irw {
		return crw < irw
	}

	if cmp := candidate.Price.Cmp(incumbent.Price); cmp != 0 {
		return cmp < 0
	}

	return candidate.ID.String() < incumbent.ID.String()
}

func wildcardCount(rule *models.PricingRule) int {
	count := 0
	if rule.Style == nil {
		count++
	}
	if rule.Material == nil {
		count++
	}
	if rule.DesignType == nil {
		count++
	}
	return count
}

// rangeWidth is max_qty - min_qty, with either bound missing treated as an
// infinitely wide range.
func rangeWidth(rule *models.PricingRule) float64 {
	if rule.MinQty == nil || rule.MaxQty == nil {
		return math.Inf(1)
	}
	return float64(*rule.MaxQty - *rule.MinQty)
}
