package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InventoryStore struct {
	pool *pgxpool.Pool
}

func NewInventoryStore(pool *pgxpool.Pool) *InventoryStore {
	return &InventoryStore{pool: pool}
}

// ListForProduct returns inventory rows for a product. With onlyVisible set,
// hidden rows are excluded; zero-quantity rows are always returned so the
// admin surface can restock them.
func (s *InventoryStore) ListForProduct(ctx context.Context, productID uuid.UUID, onlyVisible bool) ([]InventoryRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, color, size, quantity_available, is_visible, created_at, updated_at
		FROM inventory
		WHERE product_id = $1 AND (NOT $2 OR is_visible)
		ORDER BY color, size`, productID, onlyVisible)
	if err != nil {
		return nil, classify(err, "list inventory")
	}
	defer rows.Close()

	records := make([]InventoryRecord, 0)
	for rows.Next() {
		record, err := scanInventoryRecord(rows)
		if err != nil {
			return nil, classify(err, "list inventory")
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list inventory")
	}
	return records, nil
}

func (s *InventoryStore) GetByID(ctx context.Context, id uuid.UUID) (*InventoryRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, product_id, color, size, quantity_available, is_visible, created_at, updated_at
		FROM inventory
		WHERE id = $1`, id)

	record, err := scanInventoryRecord(row)
	if err != nil {
		return nil, classify(err, "get inventory record")
	}
	return record, nil
}

// AdjustQuantity applies a signed delta, clamping at zero rather than failing
// on oversell so a stale admin view cannot drive the count negative.
func (s *InventoryStore) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*InventoryRecord, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE inventory
		SET quantity_available = GREATEST(quantity_available + $2, 0), updated_at = now()
		WHERE id = $1
		RETURNING id, product_id, color, size, quantity_available, is_visible, created_at, updated_at`,
		id, delta)

	record, err := scanInventoryRecord(row)
	if err != nil {
		return nil, classify(err, "adjust inventory")
	}
	return record, nil
}

func (s *InventoryStore) SetVisibility(ctx context.Context, id uuid.UUID, visible bool) (*InventoryRecord, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE inventory
		SET is_visible = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, product_id, color, size, quantity_available, is_visible, created_at, updated_at`,
		id, visible)

	record, err := scanInventoryRecord(row)
	if err != nil {
		return nil, classify(err, "set inventory visibility")
	}
	return record, nil
}
