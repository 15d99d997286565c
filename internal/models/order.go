package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CustomerInfo is the contact block captured at checkout. It is stored
// encrypted at rest.
type CustomerInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Notes    string `json:"notes,omitempty"`
}

// DesignDetails is the frozen configurator selection snapshot on an order item.
type DesignDetails struct {
	Style      string `json:"style,omitempty"`
	Material   string `json:"material,omitempty"`
	DesignType string `json:"design_type,omitempty"`
	Color      string `json:"color,omitempty"`
	Size       string `json:"size,omitempty"`
	CustomText string `json:"custom_text,omitempty"`
	Placement  string `json:"placement,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

type Order struct {
	ID           uuid.UUID       `json:"id"`
	OrderCode    string          `json:"order_code"`
	CustomerInfo CustomerInfo    `json:"customer_info"`
	Status       OrderStatus     `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Items        []OrderItem     `json:"items,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OrderItem snapshots one selection plus its resolved unit price at the moment
// of order submission. Immutable after creation.
type OrderItem struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	PricingRuleID *uuid.UUID      `json:"pricing_rule_id"`
	DesignDetails DesignDetails   `json:"design_details"`
	CreatedAt     time.Time       `json:"created_at"`
}
