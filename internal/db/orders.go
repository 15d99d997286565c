package db

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier/internal/crypto"
)

// OrderStore persists orders and their items. Customer contact details are
// encrypted before they reach the database.
type OrderStore struct {
	pool      *pgxpool.Pool
	encryptor crypto.Encryptor
}

func NewOrderStore(pool *pgxpool.Pool, encryptor crypto.Encryptor) *OrderStore {
	return &OrderStore{pool: pool, encryptor: encryptor}
}

const orderCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newOrderCode builds a human-quotable reference like ORD-20260901-K7XQ.
func newOrderCode(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate order code: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderCodeAlphabet[int(b)%len(orderCodeAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), buf), nil
}

// Create inserts the order row first and the item rows after it. If any item
// insert fails the order row is deleted again so a half-written order is never
// visible to the admin list.
func (s *OrderStore) Create(ctx context.Context, info CustomerInfo, items []OrderItem, total decimal.Decimal) (*Order, error) {
	encrypted, err := crypto.EncryptJSON(s.encryptor, info)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt customer info: %w", err)
	}

	now := time.Now()
	code, err := newOrderCode(now)
	if err != nil {
		return nil, err
	}

	order := &Order{
		ID:           uuid.New(),
		OrderCode:    code,
		CustomerInfo: info,
		Status:       StatusPending,
		TotalAmount:  total,
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO orders (id, order_code, customer_info, status, total_amount)
		VALUES ($1, $2, $3, $4, $5::numeric)
		RETURNING created_at, updated_at`,
		order.ID, order.OrderCode, encrypted, order.Status, total.String())

	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&createdAt, &updatedAt); err != nil {
		return nil, classify(err, "create order")
	}
	order.CreatedAt = createdAt.Time
	order.UpdatedAt = updatedAt.Time

	for i := range items {
		item := &items[i]
		item.ID = uuid.New()
		item.OrderID = order.ID

		details, err := json.Marshal(item.DesignDetails)
		if err != nil {
			s.compensate(ctx, order.ID)
			return nil, fmt.Errorf("failed to encode design details: %w", err)
		}

		var ruleID pgtype.UUID
		if item.PricingRuleID != nil {
			ruleID = pgtype.UUID{Bytes: *item.PricingRuleID, Valid: true}
		}

		itemRow := s.pool.QueryRow(ctx, `
			INSERT INTO order_items
				(id, order_id, product_id, quantity, unit_price, subtotal, pricing_rule_id, design_details)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8)
			RETURNING created_at`,
			item.ID, item.OrderID, item.ProductID, item.Quantity,
			item.UnitPrice.String(), item.Subtotal.String(), ruleID, details)

		var itemCreated pgtype.Timestamptz
		if err := itemRow.Scan(&itemCreated); err != nil {
			s.compensate(ctx, order.ID)
			return nil, classify(err, "create order item")
		}
		item.CreatedAt = itemCreated.Time
	}

	order.Items = items
	return order, nil
}

// compensate removes an order whose items could not all be written. Best
// effort: the original insert error is what the caller reports.
func (s *OrderStore) compensate(ctx context.Context, orderID uuid.UUID) {
	cleanup, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	_, _ = s.pool.Exec(cleanup, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	_, _ = s.pool.Exec(cleanup, `DELETE FROM orders WHERE id = $1`, orderID)
}

func (s *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, order_code, customer_info, status, total_amount::text, created_at, updated_at
		FROM orders
		WHERE id = $1`, id)

	order, err := s.scanOrder(row)
	if err != nil {
		return nil, classify(err, "get order")
	}

	items, err := s.itemsForOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// List returns orders newest first, without item rows. Pass a zero status to
// skip the status filter.
func (s *OrderStore) List(ctx context.Context, status OrderStatus, limit, offset int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, order_code, customer_info, status, total_amount::text, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, string(status), limit, offset)
	if err != nil {
		return nil, classify(err, "list orders")
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		order, err := s.scanOrder(rows)
		if err != nil {
			return nil, classify(err, "list orders")
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list orders")
	}
	return orders, nil
}

// UpdateStatus moves an order along the pending -> processing -> shipped ->
// completed chain (cancellation allowed before shipping). Illegal moves
// return ErrInvalidStatusTransition.
func (s *OrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, next OrderStatus) (*Order, error) {
	var current OrderStatus
	err := s.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if err != nil {
		return nil, classify(err, "get order")
	}

	if !CanTransition(current, next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, current, next)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING id, order_code, customer_info, status, total_amount::text, created_at, updated_at`,
		id, next, current)

	order, err := s.scanOrder(row)
	if err != nil {
		return nil, classify(err, "update order status")
	}
	return order, nil
}

func (s *OrderStore) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price::text, subtotal::text,
			pricing_rule_id, design_details, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`, orderID)
	if err != nil {
		return nil, classify(err, "list order items")
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var (
			item        OrderItem
			unitPrice   string
			subtotal    string
			ruleID      pgtype.UUID
			detailsJSON []byte
			createdAt   pgtype.Timestamptz
		)
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&unitPrice, &subtotal, &ruleID, &detailsJSON, &createdAt)
		if err != nil {
			return nil, classify(err, "list order items")
		}

		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("failed to parse unit price: %w", err)
		}
		if item.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("failed to parse subtotal: %w", err)
		}
		if ruleID.Valid {
			id := uuid.UUID(ruleID.Bytes)
			item.PricingRuleID = &id
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &item.DesignDetails); err != nil {
				return nil, fmt.Errorf("failed to decode design details: %w", err)
			}
		}
		item.CreatedAt = createdAt.Time
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list order items")
	}
	return items, nil
}

func (s *OrderStore) scanOrder(row pgx.Row) (*Order, error) {
	var (
		order     Order
		encrypted string
		totalText string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&order.ID, &order.OrderCode, &encrypted, &order.Status,
		&totalText, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := crypto.DecryptJSON(s.encryptor, encrypted, &order.CustomerInfo); err != nil {
		return nil, fmt.Errorf("failed to decrypt customer info: %w", err)
	}

	if order.TotalAmount, err = decimal.NewFromString(totalText); err != nil {
		return nil, fmt.Errorf("failed to parse total amount: %w", err)
	}
	order.CreatedAt = createdAt.Time
	order.UpdatedAt = updatedAt.Time
	return &order, nil
}
