package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelierhq/atelier/internal/catalog"
)

// SeedCatalog upserts a parsed catalog file into the database. Rows are keyed
// by id, so re-running with the same file is idempotent; rows removed from the
// file are left in place.
func SeedCatalog(ctx context.Context, pool *pgxpool.Pool, cat *catalog.Catalog, logger *slog.Logger) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return classify(err, "begin seed")
	}
	defer tx.Rollback(ctx)

	var productCount, ruleCount, inventoryCount int

	for _, entry := range cat.Products {
		product, err := entry.Product()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO products
				(id, name, category, description, base_price, is_active,
				 has_styles, has_sizes, styles, materials, design_types, images)
			VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				description = EXCLUDED.description,
				base_price = EXCLUDED.base_price,
				is_active = EXCLUDED.is_active,
				has_styles = EXCLUDED.has_styles,
				has_sizes = EXCLUDED.has_sizes,
				styles = EXCLUDED.styles,
				materials = EXCLUDED.materials,
				design_types = EXCLUDED.design_types,
				images = EXCLUDED.images,
				updated_at = now()`,
			product.ID, product.Name, product.Category, product.Description,
			product.BasePrice.String(), product.IsActive, product.HasStyles,
			product.HasSizes, product.Styles, product.Materials,
			product.DesignTypes, product.Images)
		if err != nil {
			return classify(err, fmt.Sprintf("seed product %q", product.Name))
		}
		productCount++

		for i, ruleEntry := range entry.Rules {
			rule, err := ruleEntry.Rule(product.ID, i)
			if err != nil {
				return fmt.Errorf("product %q: %w", product.Name, err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO pricing_rules
					(id, product_id, style, material, design_type, min_qty, max_qty, price)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric)
				ON CONFLICT (id) DO UPDATE SET
					style = EXCLUDED.style,
					material = EXCLUDED.material,
					design_type = EXCLUDED.design_type,
					min_qty = EXCLUDED.min_qty,
					max_qty = EXCLUDED.max_qty,
					price = EXCLUDED.price`,
				rule.ID, rule.ProductID, rule.Style, rule.Material,
				rule.DesignType, rule.MinQty, rule.MaxQty, rule.Price.String())
			if err != nil {
				return classify(err, fmt.Sprintf("seed pricing rule for %q", product.Name))
			}
			ruleCount++
		}

		for i, invEntry := range entry.Inventory {
			record, err := invEntry.Record(product.ID, i)
			if err != nil {
				return fmt.Errorf("product %q: %w", product.Name, err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO inventory
					(id, product_id, color, size, quantity_available, is_visible)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET
					color = EXCLUDED.color,
					size = EXCLUDED.size,
					quantity_available = EXCLUDED.quantity_available,
					is_visible = EXCLUDED.is_visible,
					updated_at = now()`,
				record.ID, record.ProductID, record.Color, record.Size,
				record.QuantityAvailable, record.IsVisible)
			if err != nil {
				return classify(err, fmt.Sprintf("seed inventory for %q", product.Name))
			}
			inventoryCount++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(err, "commit seed")
	}

	logger.Info("catalog seeded",
		slog.Int("products", productCount),
		slog.Int("pricing_rules", ruleCount),
		slog.Int("inventory_records", inventoryCount))
	return nil
}
