package anomaly

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartkas-app/kasai/internal/ledger"
	"github.com/smartkas-app/kasai/internal/prompt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCompleter struct {
	reply  string
	called bool
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []prompt.Message, maxTokens int, temperature float32) (string, error) {
	f.called = true
	return f.reply, nil
}

type fakeStore struct {
	txs []ledger.Transaction

	inserted []ledger.Alert
}

func (f *fakeStore) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	return tx, nil
}

func (f *fakeStore) CreateTransactions(ctx context.Context, txs []ledger.Transaction) (int, error) {
	return len(txs), nil
}

func (f *fakeStore) ListRecentTransactions(ctx context.Context, businessID uuid.UUID, limit int) ([]ledger.Transaction, error) {
	if len(f.txs) > limit {
		return f.txs[:limit], nil
	}
	return f.txs, nil
}

func (f *fakeStore) ListProducts(ctx context.Context, businessID uuid.UUID) ([]ledger.Product, error) {
	return nil, nil
}

func (f *fakeStore) FindProductsByName(ctx context.Context, businessID uuid.UUID, query string) ([]ledger.Product, error) {
	return nil, nil
}

func (f *fakeStore) IncrementStock(ctx context.Context, productID uuid.UUID, delta int) (ledger.Product, error) {
	return ledger.Product{}, nil
}

func (f *fakeStore) InsertAlerts(ctx context.Context, alerts []ledger.Alert) error {
	f.inserted = append(f.inserted, alerts...)
	return nil
}

func transactions(n int) []ledger.Transaction {
	txs := make([]ledger.Transaction, n)
	for i := range txs {
		txs[i] = ledger.Transaction{
			Date:        time.Now().AddDate(0, 0, -i),
			Type:        ledger.TypeOut,
			Amount:      50000,
			Category:    "Operasional",
			Description: "belanja",
		}
	}
	return txs
}

const findingReply = "```json\n" + `[{
	"title": "Expense spike",
	"description": "Operational costs tripled in one day",
	"severity": "high",
	"recommendation": "Review vendor invoices",
	"impact": "Rp2.000.000",
	"suggestedActions": ["Audit receipts"],
	"amount": 2000000
}]` + "\n```"

func TestScan_SkipsSparseLedger(t *testing.T) {
	store := &fakeStore{txs: transactions(3)}
	gw := &fakeCompleter{reply: findingReply}
	d := NewDetector(store, gw, nil, discardLogger())

	anomalies, err := d.Scan(context.Background(), uuid.New(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anomalies != nil {
		t.Errorf("expected no findings for sparse ledger, got %v", anomalies)
	}
	if gw.called {
		t.Error("gateway must not be called below the transaction minimum")
	}
}

func TestScan_EmptyArrayIsClean(t *testing.T) {
	store := &fakeStore{txs: transactions(10)}
	gw := &fakeCompleter{reply: "[]"}
	d := NewDetector(store, gw, nil, discardLogger())

	anomalies, err := d.Scan(context.Background(), uuid.New(), false)
	if err != nil {
		t.Fatalf("a clean ledger is not a failure: %v", err)
	}
	if len(anomalies) != 0 {
		t.Errorf("expected clean result, got %v", anomalies)
	}
	if len(store.inserted) != 0 {
		t.Errorf("no alerts may be persisted for a clean scan, got %d", len(store.inserted))
	}
}

func TestScan_FindingsPersisted(t *testing.T) {
	store := &fakeStore{txs: transactions(10)}
	gw := &fakeCompleter{reply: findingReply}
	d := NewDetector(store, gw, nil, discardLogger())

	anomalies, err := d.Scan(context.Background(), uuid.New(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(anomalies))
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 persisted alert, got %d", len(store.inserted))
	}
	alert := store.inserted[0]
	if alert.Status != "new" {
		t.Errorf("expected status new, got %q", alert.Status)
	}
	if alert.Severity != "high" || alert.Title != "Expense spike" {
		t.Errorf("unexpected alert: %+v", alert)
	}
}

func TestScan_DryRunSkipsPersistence(t *testing.T) {
	store := &fakeStore{txs: transactions(10)}
	gw := &fakeCompleter{reply: findingReply}
	d := NewDetector(store, gw, nil, discardLogger())

	anomalies, err := d.Scan(context.Background(), uuid.New(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(anomalies))
	}
	if len(store.inserted) != 0 {
		t.Errorf("dry run must not persist, got %d alerts", len(store.inserted))
	}
}

func TestScan_ProseReplyYieldsNoFindings(t *testing.T) {
	store := &fakeStore{txs: transactions(10)}
	gw := &fakeCompleter{reply: "Everything looks normal to me."}
	d := NewDetector(store, gw, nil, discardLogger())

	anomalies, err := d.Scan(context.Background(), uuid.New(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anomalies != nil {
		t.Errorf("expected no findings for a prose reply, got %v", anomalies)
	}
	if len(store.inserted) != 0 {
		t.Errorf("nothing may be persisted without a structured payload, got %d", len(store.inserted))
	}
}
