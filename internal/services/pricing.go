package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/logging"
	"github.com/atelierhq/atelier/internal/observability"
	"github.com/atelierhq/atelier/internal/pricing"
	"github.com/atelierhq/atelier/internal/quote"
)

// PricingService is the tiered price resolution pipeline: load rules and
// inventory, normalize the raw selection, resolve the winning rule. It is the
// single pricing authority; checkout re-runs it rather than trusting prices
// the client sends.
type PricingService struct {
	products ProductRepository
	rules    pricing.Repository

	normalizer *pricing.Normalizer
	resolver   *pricing.Resolver

	debounce time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewPricingService(products ProductRepository, rules pricing.Repository, debounce, timeout time.Duration, logger *slog.Logger) *PricingService {
	return &PricingService{
		products:   products,
		rules:      rules,
		normalizer: pricing.NewNormalizer(),
		resolver:   pricing.NewResolver(),
		debounce:   debounce,
		timeout:    timeout,
		logger:     logger,
	}
}

// CalculatePrice resolves the unit price for one raw configurator selection.
// Its signature matches quote.ResolveFunc so sessions can call it directly.
func (s *PricingService) CalculatePrice(ctx context.Context, raw pricing.RawSelection) (pricing.Quote, error) {
	span := sentry.StartSpan(
		ctx,
		"service.pricing.calculate_price",
		sentry.WithOpName("service.pricing"),
		sentry.WithDescription("CalculatePrice"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	meter.Count("pricing.resolve.requested", 1)

	product, err := s.products.GetProduct(ctx, raw.ProductID)
	if err != nil {
		s.recordFailure(ctx, meter, err, "product_lookup_failed")
		return pricing.Quote{}, err
	}

	rules, err := s.rules.RulesForProduct(ctx, raw.ProductID)
	if err != nil {
		s.recordFailure(ctx, meter, err, "rule_load_failed")
		return pricing.Quote{}, err
	}

	inventory, err := s.rules.InventoryForProduct(ctx, raw.ProductID)
	if err != nil {
		s.recordFailure(ctx, meter, err, "inventory_load_failed")
		return pricing.Quote{}, err
	}

	sel := s.normalizer.Normalize(product, raw, inventory)

	q, err := s.resolver.Resolve(product, sel, rules)
	if err != nil {
		s.recordFailure(ctx, meter, err, "resolve_failed")
		return pricing.Quote{}, err
	}

	if q.RuleID == nil {
		meter.Count("pricing.resolve.fallback", 1)
	}
	meter.Count("pricing.resolve.succeeded", 1)
	return q, nil
}

// NewQuoteSession starts a configurator session whose resolutions go through
// this service.
func (s *PricingService) NewQuoteSession(productID uuid.UUID) *quote.Session {
	return quote.NewSession(productID, s.CalculatePrice,
		quote.WithDebounce(s.debounce),
		quote.WithResolveTimeout(s.timeout),
		quote.WithLogger(s.logger),
	)
}

func (s *PricingService) recordFailure(ctx context.Context, meter sentry.Meter, err error, reason string) {
	meter.Count("pricing.resolve.failed", 1, sentry.WithAttributes(
		attribute.String("reason", reason),
	))
	if errors.Is(err, pricing.ErrTransient) {
		logging.FromContext(ctx, s.logger).Warn("price resolution hit transient failure", "reason", reason, "error", err)
	}
}
