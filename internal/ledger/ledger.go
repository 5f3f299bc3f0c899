// Package ledger holds the bookkeeping domain types and the store contract
// shared by the assistant core. The concrete Postgres implementation lives in
// internal/store.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Transaction types.
const (
	TypeIn  = "in"
	TypeOut = "out"
)

// Product is one catalog entry for a business.
type Product struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
	Stock      int       `json:"stock"`
	Price      float64   `json:"price"`
	Unit       string    `json:"unit"`
}

// Transaction is one cash movement, type "in" or "out".
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	BusinessID  uuid.UUID `json:"business_id"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
}

// Alert is a persisted anomaly finding for a business.
type Alert struct {
	ID               uuid.UUID `json:"id"`
	BusinessID       uuid.UUID `json:"business_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Severity         string    `json:"severity"`
	Status           string    `json:"status"`
	Amount           float64   `json:"amount"`
	Recommendation   string    `json:"recommendation"`
	Impact           string    `json:"impact"`
	SuggestedActions []string  `json:"suggested_actions"`
	Date             time.Time `json:"date"`
}

// SnapshotTransactionCap bounds the recent-transaction window rendered into
// each turn's context.
const SnapshotTransactionCap = 5

// Snapshot is the read-only business context assembled once per turn:
// current time, the full catalog, and the recent-transaction window
// (most-recent-first). It is never mutated and is discarded after the turn.
type Snapshot struct {
	BusinessID   uuid.UUID
	Now          time.Time
	Products     []Product
	Transactions []Transaction
}

// Store is the persistence contract the assistant core depends on. Every call
// is atomic on its own; the core never needs multi-call transactions.
type Store interface {
	CreateTransaction(ctx context.Context, tx Transaction) (Transaction, error)
	CreateTransactions(ctx context.Context, txs []Transaction) (int, error)
	ListRecentTransactions(ctx context.Context, businessID uuid.UUID, limit int) ([]Transaction, error)
	ListProducts(ctx context.Context, businessID uuid.UUID) ([]Product, error)
	FindProductsByName(ctx context.Context, businessID uuid.UUID, query string) ([]Product, error)
	IncrementStock(ctx context.Context, productID uuid.UUID, delta int) (Product, error)
	InsertAlerts(ctx context.Context, alerts []Alert) error
}
