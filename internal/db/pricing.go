package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PricingStore loads pricing rules and inventory rows for a product. It
// satisfies pricing.Repository.
type PricingStore struct {
	pool     *pgxpool.Pool
	products *ProductStore
}

func NewPricingStore(pool *pgxpool.Pool, products *ProductStore) *PricingStore {
	return &PricingStore{pool: pool, products: products}
}

func (s *PricingStore) RulesForProduct(ctx context.Context, productID uuid.UUID) ([]PricingRule, error) {
	if err := s.products.Exists(ctx, productID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, style, material, design_type, min_qty, max_qty, price::text, created_at
		FROM pricing_rules
		WHERE product_id = $1
		ORDER BY created_at`, productID)
	if err != nil {
		return nil, classify(err, "list pricing rules")
	}
	defer rows.Close()

	rules := make([]PricingRule, 0)
	for rows.Next() {
		rule, err := scanPricingRule(rows)
		if err != nil {
			return nil, classify(err, "list pricing rules")
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list pricing rules")
	}
	return rules, nil
}

func (s *PricingStore) InventoryForProduct(ctx context.Context, productID uuid.UUID) ([]InventoryRecord, error) {
	if err := s.products.Exists(ctx, productID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, color, size, quantity_available, is_visible, created_at, updated_at
		FROM inventory
		WHERE product_id = $1 AND is_visible
		ORDER BY color, size`, productID)
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

func scanPricingRule(row pgx.Row) (*PricingRule, error) {
	var (
		rule      PricingRule
		style     pgtype.Text
		material  pgtype.Text
		design    pgtype.Text
		minQty    pgtype.Int4
		maxQty    pgtype.Int4
		priceText string
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&rule.ID,
		&rule.ProductID,
		&style,
		&material,
		&design,
		&minQty,
		&maxQty,
		&priceText,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Style = textPtr(style)
	rule.Material = textPtr(material)
	rule.DesignType = textPtr(design)
	rule.MinQty = int4Ptr(minQty)
	rule.MaxQty = int4Ptr(maxQty)
	rule.Price, err = decimal.NewFromString(priceText)
	if err != nil {
		return nil, err
	}
	rule.CreatedAt = createdAt.Time
	return &rule, nil
}

func scanInventoryRecord(row pgx.Row) (*InventoryRecord, error) {
	var (
		record    InventoryRecord
		color     pgtype.Text
		size      pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&record.ID,
		&record.ProductID,
		&color,
		&size,
		&record.QuantityAvailable,
		&record.IsVisible,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Color = textPtr(color)
	record.Size = textPtr(size)
	record.CreatedAt = createdAt.Time
	record.UpdatedAt = updatedAt.Time
	return &record, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func int4Ptr(i pgtype.Int4) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int32)
	return &v
}
