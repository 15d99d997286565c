package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `id, name, category, description, base_price::text, is_active,
	has_styles, has_sizes, styles, materials, design_types, images, created_at, updated_at`

func (s *ProductStore) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		return nil, classify(err, "get product")
	}
	return product, nil
}

func (s *ProductStore) ListActiveProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, classify(err, "list products")
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, classify(err, "list products")
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list products")
	}
	return products, nil
}

func (s *ProductStore) Update(ctx context.Context, id uuid.UUID, update ProductUpdate) (*Product, error) {
	var priceText pgtype.Text
	if update.BasePrice != nil {
		priceText = pgtype.Text{String: update.BasePrice.String(), Valid: true}
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE products SET
			name = COALESCE($2, name),
			category = COALESCE($3, category),
			base_price = COALESCE($4::numeric, base_price),
			is_active = COALESCE($5, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id,
		textOrNil(update.Name),
		textOrNil(update.Category),
		priceText,
		boolOrNil(update.IsActive),
	)

	product, err := scanProduct(row)
	if err != nil {
		return nil, classify(err, "update product")
	}
	return product, nil
}

// Exists reports whether a product id is present, distinguishing "no such
// product" from "product without rules" for the repository contract.
func (s *ProductStore) Exists(ctx context.Context, id uuid.UUID) error {
	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM products WHERE id = $1`, id).Scan(&one)
	if err != nil {
		return classify(err, "check product")
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		product   Product
		category  pgtype.Text
		desc      pgtype.Text
		priceText string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&category,
		&desc,
		&priceText,
		&product.IsActive,
		&product.HasStyles,
		&product.HasSizes,
		&product.Styles,
		&product.Materials,
		&product.DesignTypes,
		&product.Images,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Category = category.String
	product.Description = desc.String
	product.BasePrice, err = decimal.NewFromString(priceText)
	if err != nil {
		return nil, err
	}
	product.CreatedAt = createdAt.Time
	product.UpdatedAt = updatedAt.Time
	return &product, nil
}

func textOrNil(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func boolOrNil(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}
