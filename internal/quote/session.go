// Package quote holds the per-configurator pricing cache: the last computed
// price, the Stale/Fresh state the UI renders a loading indicator from, and
// the debounce machinery that keeps rapid input from hammering the resolver.
package quote

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/pricing"
)

type State int

const (
	// Stale means the selection changed since the last price computation.
	Stale State = iota
	// Fresh means the held quote was computed for the current selection.
	Fresh
)

func (s State) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "stale"
}

// ResolveFunc performs one price resolution for a selection snapshot. It is
// typically PricingService.CalculatePrice.
type ResolveFunc func(ctx context.Context, sel pricing.RawSelection) (pricing.Quote, error)

const (
	defaultDebounce       = 250 * time.Millisecond
	defaultResolveTimeout = 5 * time.Second
)

// Session tracks one customer's configurator selection and its price quote.
// One session serves one user interaction stream; there are no concurrent
// writers. Repository calls may still be in flight when newer input arrives,
// so every resolution carries the selection version it was computed for and a
// result is applied only if no newer result has been applied already.
type Session struct {
	resolve    ResolveFunc
	transition func(prev, next pricing.RawSelection) pricing.RawSelection
	debounce   time.Duration
	timeout    time.Duration
	logger     *slog.Logger

	mu             sync.Mutex
	sel            pricing.RawSelection
	version        uint64
	appliedVersion uint64
	state          State
	quote          pricing.Quote
	hasQuote       bool
	timer          *time.Timer
	closed         bool
}

type Option func(*Session)

// WithDebounce sets the quiescence window before a resolution fires.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// WithResolveTimeout bounds each repository-backed resolution.
func WithResolveTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates a session for the given product. The initial state is
// Stale with no quote; the first mutation (or Refresh) produces one.
func NewSession(productID uuid.UUID, resolve ResolveFunc, opts ...Option) *Session {
	s := &Session{
		resolve:    resolve,
		transition: pricing.NewNormalizer().Transition,
		debounce:   defaultDebounce,
		timeout:    defaultResolveTimeout,
		sel:        pricing.RawSelection{ProductID: productID, Quantity: 1},
		state:      Stale,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) SetStyle(style string) {
	s.mutate(func(sel *pricing.RawSelection) { sel.Style = style })
}

func (s *Session) SetMaterial(material string) {
	s.mutate(func(sel *pricing.RawSelection) { sel.Material = material })
}

// SetDesignType changes the design technique and cascades the reset of
// material, color and size before the change takes effect.
func (s *Session) SetDesignType(designType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	next := s.sel
	next.DesignType = designType
	s.sel = s.transition(s.sel, next)
	s.bumpLocked()
}

func (s *Session) SetColor(color string) {
	s.mutate(func(sel *pricing.RawSelection) { sel.Color = color })
}

func (s *Session) SetSize(size string) {
	s.mutate(func(sel *pricing.RawSelection) { sel.Size = size })
}

func (s *Session) SetQuantity(quantity int) {
	s.mutate(func(sel *pricing.RawSelection) { sel.Quantity = quantity })
}

func (s *Session) SetCustomText(text string) {
	// Monogram text does not affect the unit price, only the line total, so
	// it does not invalidate the quote.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sel.CustomText = text
}

// Selection returns a snapshot of the current raw selection.
func (s *Session) Selection() pricing.RawSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Quote returns the last applied quote. ok is false until the first
// resolution succeeds.
func (s *Session) Quote() (q pricing.Quote, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote, s.hasQuote
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Refresh resolves the current selection immediately, bypassing the debounce
// window. Checkout uses it to freeze a price into the order line item.
func (s *Session) Refresh(ctx context.Context) (pricing.Quote, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return pricing.Quote{}, errors.New("session is closed")
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	version := s.version
	sel := s.sel
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q, err := s.resolve(ctx, sel)
	s.apply(version, q, err)
	if err != nil {
		return pricing.Quote{}, err
	}
	return q, nil
}

// Close stops the debounce timer. A resolution already in flight completes
// but its result is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) mutate(fn func(*pricing.RawSelection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn(&s.sel)
	s.bumpLocked()
}

// bumpLocked marks the quote stale and re-arms the debounce timer. Only the
// timer armed for the latest version fires a resolution; earlier timers are
// stopped or find their version superseded and do nothing.
func (s *Session) bumpLocked() {
	s.version++
	s.state = Stale

	if s.timer != nil {
		s.timer.Stop()
	}
	version := s.version
	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(version)
	})
}

func (s *Session) fire(version uint64) {
	s.mu.Lock()
	if s.closed || version != s.version {
		s.mu.Unlock()
		return
	}
	sel := s.sel
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	q, err := s.resolve(ctx, sel)
	s.apply(version, q, err)
}

// apply installs a resolution result unless a result for a newer selection
// version was applied first. Out-of-order completions for superseded
// selections are ignored, never allowed to overwrite a newer price. Errors
// retain the last known-good quote so the customer never sees the price
// blank out.
func (s *Session) apply(version uint64, q pricing.Quote, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if version < s.appliedVersion {
		return
	}

	if err != nil {
		logger := s.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("price resolution failed, retaining last quote",
			"error", err,
			"product_id", s.sel.ProductID,
			"style", s.sel.Style,
			"material", s.sel.Material,
			"design_type", s.sel.DesignType,
			"quantity", s.sel.Quantity,
			"transient", errors.Is(err, pricing.ErrTransient),
		)
		return
	}

	s.appliedVersion = version
	s.quote = q
	s.hasQuote = true
	if version == s.version {
		s.state = Fresh
	}
}
