package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier/internal/db"
	"github.com/atelierhq/atelier/internal/models"
	"github.com/atelierhq/atelier/internal/pricing"
)

type fakeProductRepo struct {
	products map[uuid.UUID]models.Product
}

func (f *fakeProductRepo) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, pricing.ErrNotFound
	}
	return &product, nil
}

func (f *fakeProductRepo) ListActiveProducts(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.products))
	for _, product := range f.products {
		out = append(out, product)
	}
	return out, nil
}

type fakeOrderStore struct {
	created     *db.Order
	createErr   error
	updated     *db.Order
	updateErr   error
	lastStatus  db.OrderStatus
	listErr     error
	listedLimit int
}

func (f *fakeOrderStore) Create(_ context.Context, info db.CustomerInfo, items []db.OrderItem, total decimal.Decimal) (*db.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	order := &db.Order{
		ID:           uuid.New(),
		OrderCode:    "ORD-20260901-TEST",
		CustomerInfo: info,
		Status:       db.StatusPending,
		TotalAmount:  total,
		Items:        items,
		CreatedAt:    time.Now(),
	}
	f.created = order
	return order, nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id uuid.UUID) (*db.Order, error) {
	if f.created != nil && f.created.ID == id {
		return f.created, nil
	}
	return nil, pricing.ErrNotFound
}

func (f *fakeOrderStore) List(_ context.Context, _ db.OrderStatus, limit, _ int) ([]db.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.listedLimit = limit
	return []db.Order{}, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, next db.OrderStatus) (*db.Order, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.lastStatus = next
	order := &db.Order{ID: id, OrderCode: "ORD-20260901-TEST", Status: next}
	f.updated = order
	return order, nil
}

type fakePricer struct {
	quotes map[uuid.UUID]pricing.Quote
	err    error
}

func (f *fakePricer) CalculatePrice(_ context.Context, raw pricing.RawSelection) (pricing.Quote, error) {
	if f.err != nil {
		return pricing.Quote{}, f.err
	}
	return f.quotes[raw.ProductID], nil
}

type fakeEmailSender struct {
	confirmations int
	shipped       int
	err           error
}

func (f *fakeEmailSender) SendOrderConfirmation(context.Context, *db.Order, map[uuid.UUID]string) error {
	f.confirmations++
	return f.err
}

func (f *fakeEmailSender) SendOrderShipped(context.Context, *db.Order) error {
	f.shipped++
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateOrderRepricesServerSide(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	ruleID := uuid.New()
	products := &fakeProductRepo{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Hoodie", BasePrice: price("20.00")},
	}}
	store := &fakeOrderStore{}
	pricer := &fakePricer{quotes: map[uuid.UUID]pricing.Quote{
		productID: {UnitPrice: price("8.00"), RuleID: &ruleID},
	}}
	emails := &fakeEmailSender{}

	svc := NewOrderService(products, store, pricer, price("50.00"), emails, discardLogger())

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: db.CustomerInfo{FullName: "Ana Ruiz", Email: "ana@example.com"},
		Items: []pricing.RawSelection{
			{ProductID: productID, DesignType: "DTF", Quantity: 10},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if !item.UnitPrice.Equal(price("8.00")) {
		t.Errorf("unit price = %s, want 8.00", item.UnitPrice)
	}
	if !item.Subtotal.Equal(price("80.00")) {
		t.Errorf("subtotal = %s, want 80.00", item.Subtotal)
	}
	if item.PricingRuleID == nil || *item.PricingRuleID != ruleID {
		t.Errorf("pricing rule id not recorded on item")
	}
	if !order.TotalAmount.Equal(price("80.00")) {
		t.Errorf("total = %s, want 80.00", order.TotalAmount)
	}
	if emails.confirmations != 1 {
		t.Errorf("expected 1 confirmation email, got %d", emails.confirmations)
	}
}

func TestCreateOrderAddsMonogramSurcharge(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	products := &fakeProductRepo{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Polo", BasePrice: price("15.00")},
	}}
	store := &fakeOrderStore{}
	pricer := &fakePricer{quotes: map[uuid.UUID]pricing.Quote{
		productID: {UnitPrice: price("15.00")},
	}}

	svc := NewOrderService(products, store, pricer, price("50.00"), nil, discardLogger())

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: db.CustomerInfo{FullName: "Ana Ruiz", Email: "ana@example.com"},
		Items: []pricing.RawSelection{
			{ProductID: productID, Quantity: 2, CustomText: "A.R."},
			{ProductID: productID, Quantity: 2, CustomText: "   "},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	// First item carries initials: (15 + 50) * 2. Whitespace-only text on
	// the second does not.
	if !order.Items[0].UnitPrice.Equal(price("65.00")) {
		t.Errorf("monogrammed unit price = %s, want 65.00", order.Items[0].UnitPrice)
	}
	if !order.Items[1].UnitPrice.Equal(price("15.00")) {
		t.Errorf("plain unit price = %s, want 15.00", order.Items[1].UnitPrice)
	}
	if !order.TotalAmount.Equal(price("160.00")) {
		t.Errorf("total = %s, want 160.00", order.TotalAmount)
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	t.Parallel()

	svc := NewOrderService(&fakeProductRepo{}, &fakeOrderStore{}, &fakePricer{}, price("50.00"), nil, discardLogger())

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: db.CustomerInfo{FullName: "Ana Ruiz"},
	})
	if !errors.Is(err, pricing.ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestCreateOrderPropagatesPricingFailure(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	products := &fakeProductRepo{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Cap"},
	}}
	store := &fakeOrderStore{}
	pricer := &fakePricer{err: pricing.ErrTransient}

	svc := NewOrderService(products, store, pricer, price("50.00"), nil, discardLogger())

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: db.CustomerInfo{FullName: "Ana Ruiz"},
		Items:    []pricing.RawSelection{{ProductID: productID, Quantity: 1}},
	})
	if !errors.Is(err, pricing.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	if store.created != nil {
		t.Errorf("order should not be persisted when pricing fails")
	}
}

func TestCreateOrderSurvivesEmailFailure(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	products := &fakeProductRepo{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Tee"},
	}}
	store := &fakeOrderStore{}
	pricer := &fakePricer{quotes: map[uuid.UUID]pricing.Quote{
		productID: {UnitPrice: price("9.00")},
	}}
	emails := &fakeEmailSender{err: errors.New("smtp down")}

	svc := NewOrderService(products, store, pricer, price("50.00"), emails, discardLogger())

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: db.CustomerInfo{FullName: "Ana Ruiz", Email: "ana@example.com"},
		Items:    []pricing.RawSelection{{ProductID: productID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder should not fail on email errors: %v", err)
	}
	if order == nil {
		t.Fatal("expected order to be returned")
	}
}

func TestUpdateStatusSendsShippedEmail(t *testing.T) {
	t.Parallel()

	store := &fakeOrderStore{}
	emails := &fakeEmailSender{}
	svc := NewOrderService(&fakeProductRepo{}, store, &fakePricer{}, price("50.00"), emails, discardLogger())

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), db.StatusShipped)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if emails.shipped != 1 {
		t.Errorf("expected 1 shipped email, got %d", emails.shipped)
	}

	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), db.StatusProcessing); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if emails.shipped != 1 {
		t.Errorf("shipped email should only go out on the shipped transition")
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := NewOrderService(&fakeProductRepo{}, &fakeOrderStore{}, &fakePricer{}, price("50.00"), nil, discardLogger())

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "teleported")
	if !errors.Is(err, db.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestListOrdersRejectsUnknownStatusFilter(t *testing.T) {
	t.Parallel()

	svc := NewOrderService(&fakeProductRepo{}, &fakeOrderStore{}, &fakePricer{}, price("50.00"), nil, discardLogger())

	if _, err := svc.ListOrders(context.Background(), "bogus", 10, 0); err == nil {
		t.Fatal("expected error for unknown status filter")
	}
	if _, err := svc.ListOrders(context.Background(), db.StatusPending, 10, 0); err != nil {
		t.Fatalf("valid status filter returned error: %v", err)
	}
}
