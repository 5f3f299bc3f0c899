package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smartkas-app/kasai/internal/ledger"
)

// CreateTransaction inserts one transaction and returns it.
func (s *Store) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (id, business_id, date, type, amount, description, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tx.ID, tx.BusinessID, tx.Date, tx.Type, tx.Amount, tx.Description, tx.Category, tx.Status,
	)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

// CreateTransactions bulk-inserts transactions and returns the inserted count.
func (s *Store) CreateTransactions(ctx context.Context, txs []ledger.Transaction) (int, error) {
	batch := &pgx.Batch{}
	for _, tx := range txs {
		id := tx.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(`
			INSERT INTO transactions (id, business_id, date, type, amount, description, category, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, tx.BusinessID, tx.Date, tx.Type, tx.Amount, tx.Description, tx.Category, tx.Status,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range txs {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}
	return len(txs), nil
}

// ListRecentTransactions returns up to limit transactions, most recent first.
func (s *Store) ListRecentTransactions(ctx context.Context, businessID uuid.UUID, limit int) ([]ledger.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, date, type, amount, description, category, status
		FROM transactions
		WHERE business_id = $1
		ORDER BY date DESC
		LIMIT $2`,
		businessID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		if err := rows.Scan(&t.ID, &t.BusinessID, &t.Date, &t.Type, &t.Amount, &t.Description, &t.Category, &t.Status); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
