package db

import "github.com/atelierhq/atelier/internal/models"

type Product = models.Product
type ProductUpdate = models.ProductUpdate
type PricingRule = models.PricingRule
type InventoryRecord = models.InventoryRecord
type Order = models.Order
type OrderItem = models.OrderItem
type OrderStatus = models.OrderStatus
type CustomerInfo = models.CustomerInfo
type DesignDetails = models.DesignDetails

const (
	StatusPending    = models.StatusPending
	StatusProcessing = models.StatusProcessing
	StatusShipped    = models.StatusShipped
	StatusCompleted  = models.StatusCompleted
	StatusCancelled  = models.StatusCancelled
)

// CanTransition and ValidStatus are re-exported so store callers working in
// db types do not need a second import for the transition rules.
var (
	CanTransition = models.CanTransition
	ValidStatus   = models.ValidStatus
)
