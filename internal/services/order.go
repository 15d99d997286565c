package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier/internal/db"
	"github.com/atelierhq/atelier/internal/logging"
	"github.com/atelierhq/atelier/internal/observability"
	"github.com/atelierhq/atelier/internal/pricing"
)

type orderStore interface {
	Create(ctx context.Context, info db.CustomerInfo, items []db.OrderItem, total decimal.Decimal) (*db.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*db.Order, error)
	List(ctx context.Context, status db.OrderStatus, limit, offset int) ([]db.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next db.OrderStatus) (*db.Order, error)
}

type priceCalculator interface {
	CalculatePrice(ctx context.Context, raw pricing.RawSelection) (pricing.Quote, error)
}

// OrderService turns configurator selections into persisted orders. Every
// item is re-priced server-side at submission; quotes held by the client are
// advisory only.
type OrderService struct {
	products    ProductRepository
	orders      orderStore
	pricer      priceCalculator
	surcharge   decimal.Decimal
	emailSender OrderEmailSender
	logger      *slog.Logger
}

func NewOrderService(products ProductRepository, orders orderStore, pricer priceCalculator, surcharge decimal.Decimal, emailSender OrderEmailSender, logger *slog.Logger) *OrderService {
	if emailSender == nil {
		emailSender = noopOrderEmailSender{}
	}

	return &OrderService{
		products:    products,
		orders:      orders,
		pricer:      pricer,
		surcharge:   surcharge,
		emailSender: emailSender,
		logger:      logger,
	}
}

type CreateOrderInput struct {
	Customer db.CustomerInfo
	Items    []pricing.RawSelection
}

func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*db.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.order.create_order",
		sentry.WithOpName("service.order"),
		sentry.WithDescription("CreateOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := logging.FromContext(ctx, s.logger)
	meter := observability.MeterFromContext(ctx)
	recordFailure := func(reason string) {
		meter.Count("order.create.failed", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}
	meter.Count("order.create.received", 1)

	if len(input.Items) == 0 {
		recordFailure("no_items")
		return nil, fmt.Errorf("%w: order needs at least one item", pricing.ErrInvalidSelection)
	}

	productNames := make(map[uuid.UUID]string)
	items := make([]db.OrderItem, 0, len(input.Items))
	total := decimal.Zero

	for i, raw := range input.Items {
		product, err := s.products.GetProduct(ctx, raw.ProductID)
		if err != nil {
			recordFailure("product_lookup_failed")
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		productNames[product.ID] = product.Name

		q, err := s.pricer.CalculatePrice(ctx, raw)
		if err != nil {
			recordFailure("pricing_failed")
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		unitPrice := q.UnitPrice
		if strings.TrimSpace(raw.CustomText) != "" {
			unitPrice = unitPrice.Add(s.surcharge)
		}

		quantity := raw.Quantity
		if quantity < 1 {
			quantity = 1
		}
		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

		items = append(items, db.OrderItem{
			ProductID:     raw.ProductID,
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			Subtotal:      subtotal,
			PricingRuleID: q.RuleID,
			DesignDetails: db.DesignDetails{
				Style:      strings.TrimSpace(raw.Style),
				Material:   strings.TrimSpace(raw.Material),
				DesignType: strings.TrimSpace(raw.DesignType),
				Color:      strings.TrimSpace(raw.Color),
				Size:       strings.TrimSpace(raw.Size),
				CustomText: strings.TrimSpace(raw.CustomText),
				Placement:  strings.TrimSpace(raw.Placement),
				ImageURL:   strings.TrimSpace(raw.ImageURL),
			},
		})
		total = total.Add(subtotal)
	}

	order, err := s.orders.Create(ctx, input.Customer, items, total)
	if err != nil {
		recordFailure("order_create_failed")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	meter.Count("order.created", 1)

	if err := s.emailSender.SendOrderConfirmation(ctx, order, productNames); err != nil {
		logger.Warn("failed to send order confirmation email", "error", err, "order_code", order.OrderCode)
	}

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*db.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns orders newest first, optionally filtered by status. An
// unknown status is rejected up front so typos do not read as an empty shop.
func (s *OrderService) ListOrders(ctx context.Context, status db.OrderStatus, limit, offset int) ([]db.Order, error) {
	if status != "" && !db.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown order status %q", pricing.ErrInvalidSelection, status)
	}
	return s.orders.List(ctx, status, limit, offset)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next db.OrderStatus) (*db.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.order.update_status",
		sentry.WithOpName("service.order"),
		sentry.WithDescription("UpdateStatus"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)

	if !db.ValidStatus(next) {
		return nil, fmt.Errorf("%w: unknown order status %q", db.ErrInvalidStatusTransition, next)
	}

	order, err := s.orders.UpdateStatus(ctx, id, next)
	if err != nil {
		meter.Count("order.status_update.failed", 1)
		return nil, err
	}
	meter.Count("order.status_update.succeeded", 1, sentry.WithAttributes(
		attribute.String("status", string(next)),
	))

	if next == db.StatusShipped {
		if err := s.emailSender.SendOrderShipped(ctx, order); err != nil {
			logging.FromContext(ctx, s.logger).Warn("failed to send order shipped email",
				"error", err, "order_code", order.OrderCode)
		}
	}

	return order, nil
}
