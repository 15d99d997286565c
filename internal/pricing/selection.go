package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawSelection is the untrusted configurator state as the UI reports it.
// Empty strings mean "unselected"; quantity may be zero or negative and is
// clamped during normalization.
type RawSelection struct {
	ProductID  uuid.UUID `json:"product_id"`
	Style      string    `json:"style"`
	Material   string    `json:"material"`
	DesignType string    `json:"design_type"`
	Color      string    `json:"color"`
	Size       string    `json:"size"`
	Quantity   int       `json:"quantity"`
	CustomText string    `json:"custom_text"`
	Placement  string    `json:"placement"`
	ImageURL   string    `json:"image_url"`
}

// Selection is the canonical matching key produced by the Normalizer.
// All text dimensions are trimmed, "" means absent, and Quantity is >= 1.
type Selection struct {
	Style      string
	Material   string
	DesignType string
	Color      string
	Size       string
	Quantity   int
}

// Quote is the outcome of one price resolution. A nil RuleID signals the
// base-price fallback was used, which is not an error condition.
type Quote struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	RuleID    *uuid.UUID      `json:"rule_id"`
}
