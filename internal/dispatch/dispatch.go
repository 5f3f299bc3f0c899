// Package dispatch maps a validated action onto exactly one ledger mutation
// and renders the confirmation text. No mutation is issued unless validation
// and, for stock updates, entity resolution have both succeeded; a mutation
// that fails to commit never produces a confirmation.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartkas-app/kasai/internal/ledger"
	"github.com/smartkas-app/kasai/internal/resolve"
	"github.com/smartkas-app/kasai/internal/validate"
)

// Result is the outcome of a dispatched action. Transaction is set when the
// action created one, so the caller can mirror it asynchronously. An empty
// Reply with a nil error means the action was a recognized no-op.
type Result struct {
	Reply       string
	Transaction *ledger.Transaction
}

type Dispatcher struct {
	store  ledger.Store
	logger *slog.Logger
}

func New(store ledger.Store, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, logger: logger}
}

// Dispatch executes one validated action against the ledger. Unknown action
// kinds are logged and skipped, never executed.
func (d *Dispatcher) Dispatch(ctx context.Context, snap ledger.Snapshot, action validate.Action) (Result, error) {
	switch a := action.(type) {
	case validate.SaveTransaction:
		return d.saveTransaction(ctx, snap.BusinessID, a)
	case validate.UpdateStock:
		return d.updateStock(ctx, snap, a)
	default:
		d.logger.Warn("unknown action kind, skipping", "action", fmt.Sprintf("%T", action))
		return Result{}, nil
	}
}

func (d *Dispatcher) saveTransaction(ctx context.Context, businessID uuid.UUID, a validate.SaveTransaction) (Result, error) {
	tx, err := d.store.CreateTransaction(ctx, ledger.Transaction{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Date:        time.Now(),
		Type:        a.Type,
		Amount:      a.Amount,
		Description: a.Description,
		Category:    a.Category,
		Status:      "completed",
	})
	if err != nil {
		return Result{}, fmt.Errorf("create transaction: %w", err)
	}

	direction := "Pengeluaran"
	if a.Type == ledger.TypeIn {
		direction = "Pemasukan"
	}
	reply := fmt.Sprintf("✅ Transaksi berhasil disimpan: %s Rp%s (%s).",
		direction, FormatRupiah(a.Amount), a.Description)

	return Result{Reply: reply, Transaction: &tx}, nil
}

func (d *Dispatcher) updateStock(ctx context.Context, snap ledger.Snapshot, a validate.UpdateStock) (Result, error) {
	product, err := resolve.Product(a.ProductName, snap.Products)
	if err != nil {
		return Result{}, err
	}

	updated, err := d.store.IncrementStock(ctx, product.ID, a.QuantityChange)
	if err != nil {
		return Result{}, fmt.Errorf("increment stock: %w", err)
	}

	sign := ""
	if a.QuantityChange > 0 {
		sign = "+"
	}
	reply := fmt.Sprintf("📦 Stok updated: %s %s%d. Total: %d %s.",
		updated.Name, sign, a.QuantityChange, updated.Stock, updated.Unit)

	return Result{Reply: reply}, nil
}

// FormatRupiah renders an amount with Indonesian thousand separators,
// e.g. 18000 -> "18.000".
func FormatRupiah(amount float64) string {
	s := fmt.Sprintf("%.0f", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
