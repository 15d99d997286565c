package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelierhq/atelier/internal/catalog"
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/db"
	"github.com/atelierhq/atelier/internal/pricing"
	"github.com/atelierhq/atelier/internal/services"
	"github.com/atelierhq/atelier/internal/session"
)

const testCatalog = `
products:
  - name: "Playera DTF"
    base_price: "20.00"
    design_types: ["DTF", "Sublimado"]
    rules:
      - design_type: "DTF"
        min_qty: 10
        max_qty: 49
        price: "8.00"
      - design_type: "DTF"
        min_qty: 50
        price: "6.50"
    inventory:
      - color: "Black"
        size: "M"
        quantity_available: 5
      - color: "White"
        size: "M"
        quantity_available: 12
`

type memoryOrderStore struct {
	orders map[uuid.UUID]*db.Order
}

func newMemoryOrderStore() *memoryOrderStore {
	return &memoryOrderStore{orders: make(map[uuid.UUID]*db.Order)}
}

func (m *memoryOrderStore) Create(_ context.Context, info db.CustomerInfo, items []db.OrderItem, total decimal.Decimal) (*db.Order, error) {
	order := &db.Order{
		ID:           uuid.New(),
		OrderCode:    "ORD-20260901-TEST",
		CustomerInfo: info,
		Status:       db.StatusPending,
		TotalAmount:  total,
		Items:        items,
		CreatedAt:    time.Now(),
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *memoryOrderStore) GetByID(_ context.Context, id uuid.UUID) (*db.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, pricing.ErrNotFound
	}
	return order, nil
}

func (m *memoryOrderStore) List(_ context.Context, status db.OrderStatus, _, _ int) ([]db.Order, error) {
	out := make([]db.Order, 0, len(m.orders))
	for _, order := range m.orders {
		if status != "" && order.Status != status {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (m *memoryOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, next db.OrderStatus) (*db.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, pricing.ErrNotFound
	}
	if !db.CanTransition(order.Status, next) {
		return nil, db.ErrInvalidStatusTransition
	}
	order.Status = next
	return order, nil
}

type memoryInventoryStore struct{}

func (memoryInventoryStore) ListForProduct(context.Context, uuid.UUID, bool) ([]db.InventoryRecord, error) {
	return []db.InventoryRecord{}, nil
}

func (memoryInventoryStore) GetByID(context.Context, uuid.UUID) (*db.InventoryRecord, error) {
	return nil, pricing.ErrNotFound
}

func (memoryInventoryStore) AdjustQuantity(context.Context, uuid.UUID, int) (*db.InventoryRecord, error) {
	return nil, pricing.ErrNotFound
}

func (memoryInventoryStore) SetVisibility(context.Context, uuid.UUID, bool) (*db.InventoryRecord, error) {
	return nil, pricing.ErrNotFound
}

type testEnv struct {
	handlers  *Handlers
	repo      *catalog.Repository
	orders    *memoryOrderStore
	productID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	parsed, err := catalog.NewParser().Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("failed to parse test catalog: %v", err)
	}
	repo, err := catalog.NewRepository(parsed)
	if err != nil {
		t.Fatalf("failed to build catalog repository: %v", err)
	}

	products, err := repo.ListActiveProducts(context.Background())
	if err != nil || len(products) != 1 {
		t.Fatalf("expected 1 product in test catalog, got %d (err %v)", len(products), err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	cfg := &config.Config{
		AdminEmail:        "owner@example.com",
		AdminPasswordHash: string(hash),
		TokenSigningKey:   "0123456789abcdef0123456789abcdef",
		MonogramSurcharge: "50.00",
	}

	authService, err := services.NewAuthService(cfg, logger)
	if err != nil {
		t.Fatalf("failed to build auth service: %v", err)
	}

	pricingService := services.NewPricingService(repo, repo, 0, time.Second, logger)
	orders := newMemoryOrderStore()
	orderService := services.NewOrderService(repo, orders, pricingService, cfg.Surcharge(), nil, logger)
	inventoryService := services.NewInventoryService(memoryInventoryStore{}, nil, logger)
	productService := services.NewProductService(repo, repo, repo)
	sessionManager := session.NewManager(session.NewMemoryStore(), false)

	h, err := New(Dependencies{
		Config:           cfg,
		PricingService:   pricingService,
		ProductService:   productService,
		OrderService:     orderService,
		InventoryService: inventoryService,
		AuthService:      authService,
		SessionManager:   sessionManager,
		Logger:           logger,
	})
	if err != nil {
		t.Fatalf("failed to build handlers: %v", err)
	}

	return &testEnv{
		handlers:  h,
		repo:      repo,
		orders:    orders,
		productID: products[0].ID,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestCalculatePrice(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
		wantPrice  string
		wantRule   bool
	}{
		{
			name: "tier rule match",
			payload: map[string]any{
				"product_id": env.productID.String(), "design_type": "DTF", "quantity": 10,
			},
			wantStatus: http.StatusOK,
			wantPrice:  "8.00",
			wantRule:   true,
		},
		{
			name: "bulk tier",
			payload: map[string]any{
				"product_id": env.productID.String(), "design_type": "DTF", "quantity": 50,
			},
			wantStatus: http.StatusOK,
			wantPrice:  "6.50",
			wantRule:   true,
		},
		{
			name: "base price fallback",
			payload: map[string]any{
				"product_id": env.productID.String(), "design_type": "Bordado", "quantity": 10,
			},
			wantStatus: http.StatusOK,
			wantPrice:  "20.00",
			wantRule:   false,
		},
		{
			name: "unknown product",
			payload: map[string]any{
				"product_id": uuid.NewString(), "quantity": 1,
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "missing quantity",
			payload: map[string]any{
				"product_id": env.productID.String(),
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := postJSON(t, env.handlers.CalculatePrice, "/api/calculate-price", tt.payload)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp calculatePriceResponse
			decodeBody(t, rec, &resp)
			if resp.UnitPrice != tt.wantPrice {
				t.Errorf("unit_price = %s, want %s", resp.UnitPrice, tt.wantPrice)
			}
			if tt.wantRule && resp.RuleID == nil {
				t.Error("expected a rule_id")
			}
			if !tt.wantRule && resp.RuleID != nil {
				t.Errorf("expected null rule_id, got %s", *resp.RuleID)
			}
		})
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	payload := map[string]any{
		"customer": map[string]any{
			"full_name": "Ana Ruiz",
			"email":     "ana@example.com",
			"phone":     "555-0100",
			"address":   "Av. Siempre Viva 742",
		},
		"items": []map[string]any{
			{
				"product_id":  env.productID.String(),
				"design_type": "DTF",
				"color":       "Black",
				"size":        "M",
				"quantity":    10,
				"custom_text": "A.R.",
			},
		},
	}

	rec := postJSON(t, env.handlers.CreateOrder, "/api/orders", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body)
	}

	var order db.Order
	decodeBody(t, rec, &order)
	if order.Status != db.StatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	// (8.00 rule price + 50.00 monogram) * 10
	if !order.TotalAmount.Equal(decimal.RequireFromString("580.00")) {
		t.Errorf("total = %s, want 580.00", order.TotalAmount)
	}
}

func TestCreateOrderEndpointRejectsInvalidBody(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := postJSON(t, env.handlers.CreateOrder, "/api/orders", map[string]any{
		"customer": map[string]any{"full_name": "Ana Ruiz"},
		"items":    []map[string]any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	order, err := env.orders.Create(context.Background(), db.CustomerInfo{FullName: "Ana Ruiz"}, nil, decimal.Zero)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}

	do := func(status string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"status": status})
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+order.ID.String()+"/status", bytes.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"id": order.ID.String()})
		rec := httptest.NewRecorder()
		env.handlers.UpdateOrderStatus(rec, req)
		return rec
	}

	if rec := do("processing"); rec.Code != http.StatusOK {
		t.Fatalf("pending->processing status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	if rec := do("completed"); rec.Code != http.StatusConflict {
		t.Fatalf("processing->completed status = %d, want 409", rec.Code)
	}
	if rec := do("teleported"); rec.Code != http.StatusConflict {
		t.Fatalf("unknown status = %d, want 409", rec.Code)
	}
}

func TestUpdateProductEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	do := func(payload map[string]any) *httptest.ResponseRecorder {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/products/"+env.productID.String(), bytes.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"id": env.productID.String()})
		rec := httptest.NewRecorder()
		env.handlers.UpdateProduct(rec, req)
		return rec
	}

	if rec := do(map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty update status = %d, want 400", rec.Code)
	}
	if rec := do(map[string]any{"base_price": "-1.00"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative price status = %d, want 400", rec.Code)
	}

	rec := do(map[string]any{"base_price": "25.00"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}

	// The fallback price for an unruled selection now reflects the edit.
	rec = postJSON(t, env.handlers.CalculatePrice, "/api/calculate-price", map[string]any{
		"product_id": env.productID.String(), "design_type": "Bordado", "quantity": 10,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("calculate status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	var resp calculatePriceResponse
	decodeBody(t, rec, &resp)
	if resp.UnitPrice != "25.00" {
		t.Errorf("unit_price = %s, want 25.00", resp.UnitPrice)
	}
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := postJSON(t, env.handlers.Login, "/api/admin/login", map[string]string{
		"email": "owner@example.com", "password": "sesame",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}

	var resp loginResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Error("expected a token")
	}

	cookies := rec.Result().Cookies()
	found := false
	for _, cookie := range cookies {
		if cookie.Name == "atelier_session" && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie to be set")
	}

	rec = postJSON(t, env.handlers.Login, "/api/admin/login", map[string]string{
		"email": "owner@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBearerToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	guarded := env.handlers.RequireAuth(http.HandlerFunc(env.handlers.ListOrders))

	rec := postJSON(t, env.handlers.Login, "/api/admin/login", map[string]string{
		"email": "owner@example.com", "password": "sesame",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	var resp loginResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token from login")
	}

	t.Run("valid bearer token admits without a cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		got := httptest.NewRecorder()
		guarded.ServeHTTP(got, req)
		if got.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", got.Code, got.Body)
		}
	})

	t.Run("garbage bearer token answers 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		got := httptest.NewRecorder()
		guarded.ServeHTTP(got, req)
		if got.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", got.Code)
		}
	})

	t.Run("no credentials answers 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		got := httptest.NewRecorder()
		guarded.ServeHTTP(got, req)
		if got.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", got.Code)
		}
	})

	t.Run("session cookie still admits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		for _, cookie := range rec.Result().Cookies() {
			req.AddCookie(cookie)
		}
		got := httptest.NewRecorder()
		guarded.ServeHTTP(got, req)
		if got.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", got.Code, got.Body)
		}
	})
}
