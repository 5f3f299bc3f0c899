package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/smartkas-app/kasai/internal/ledger"
)

const productColumns = "id, business_id, name, stock, price, unit"

// ListProducts returns the full catalog for a business.
func (s *Store) ListProducts(ctx context.Context, businessID uuid.UUID) ([]ledger.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE business_id = $1
		ORDER BY name`,
		businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		var p ledger.Product
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Stock, &p.Price, &p.Unit); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindProductsByName returns catalog entries whose name contains the query,
// case-insensitively.
func (s *Store) FindProductsByName(ctx context.Context, businessID uuid.UUID, query string) ([]ledger.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE business_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY name`,
		businessID, query,
	)
	if err != nil {
		return nil, fmt.Errorf("query products by name: %w", err)
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		var p ledger.Product
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.Stock, &p.Price, &p.Unit); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// IncrementStock applies a signed stock delta atomically and returns the
// updated product.
func (s *Store) IncrementStock(ctx context.Context, productID uuid.UUID, delta int) (ledger.Product, error) {
	var p ledger.Product
	err := s.pool.QueryRow(ctx, `
		UPDATE products SET stock = stock + $1
		WHERE id = $2
		RETURNING `+productColumns,
		delta, productID,
	).Scan(&p.ID, &p.BusinessID, &p.Name, &p.Stock, &p.Price, &p.Unit)
	if err != nil {
		return ledger.Product{}, fmt.Errorf("increment stock: %w", err)
	}
	return p, nil
}
