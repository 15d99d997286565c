package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/db"
	"github.com/atelierhq/atelier/internal/logging"
	"github.com/atelierhq/atelier/internal/pricing"
	"github.com/atelierhq/atelier/internal/services"
	"github.com/atelierhq/atelier/internal/session"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

var requestValidator = validator.New()

// Handlers provides the storefront and admin HTTP API.
type Handlers struct {
	config           *config.Config
	db               *pgxpool.Pool
	pricingService   *services.PricingService
	productService   *services.ProductService
	orderService     *services.OrderService
	inventoryService *services.InventoryService
	authService      *services.AuthService
	sessionManager   *session.Manager
	logger           *slog.Logger
}

type Dependencies struct {
	Config           *config.Config
	DB               *pgxpool.Pool
	PricingService   *services.PricingService
	ProductService   *services.ProductService
	OrderService     *services.OrderService
	InventoryService *services.InventoryService
	AuthService      *services.AuthService
	SessionManager   *session.Manager
	Logger           *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.PricingService == nil {
		return nil, fmt.Errorf("handlers dependencies: pricingService is required")
	}
	if deps.ProductService == nil {
		return nil, fmt.Errorf("handlers dependencies: productService is required")
	}
	if deps.OrderService == nil {
		return nil, fmt.Errorf("handlers dependencies: orderService is required")
	}
	if deps.InventoryService == nil {
		return nil, fmt.Errorf("handlers dependencies: inventoryService is required")
	}
	if deps.AuthService == nil {
		return nil, fmt.Errorf("handlers dependencies: authService is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}

	return &Handlers{
		config:           deps.Config,
		db:               deps.DB,
		pricingService:   deps.PricingService,
		productService:   deps.ProductService,
		orderService:     deps.OrderService,
		inventoryService: deps.InventoryService,
		authService:      deps.AuthService,
		sessionManager:   deps.SessionManager,
		logger:           logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			logger.Error("database health check failed", "error", err)
			h.respondError(w, r, http.StatusServiceUnavailable, "database unhealthy")
			return
		}
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

// SessionMiddleware adds session data to the request context
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

// RequireAuth admits requests carrying either a valid session cookie or a
// bearer token minted at login. A present Authorization header is
// authoritative: a bad token answers 401 even when a cookie rides along.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	sessionGuard := h.sessionManager.RequireAuth()(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			sessionGuard.ServeHTTP(w, r)
			return
		}

		adminID, err := h.authService.VerifyToken(token)
		if err != nil {
			h.respondError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		data := &session.Data{AdminID: adminID, Email: h.config.AdminEmail}
		next.ServeHTTP(w, r.WithContext(session.ContextWithSession(r.Context(), data)))
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Transient failures answer 503 so clients know a retry is worthwhile.
func (h *Handlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pricing.ErrNotFound):
		h.respondError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, pricing.ErrInvalidSelection):
		h.respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrInvalidStatusTransition):
		h.respondError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrTransient):
		h.loggerFromContext(r.Context()).Warn("transient failure", "error", err)
		h.respondError(w, r, http.StatusServiceUnavailable, "temporarily unavailable, try again")
	default:
		h.loggerFromContext(r.Context()).Error("request failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads, decodes and validates a request body into dst.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	if err := requestValidator.Struct(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}
