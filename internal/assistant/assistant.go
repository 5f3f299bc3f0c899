// Package assistant orchestrates one request/response turn: assemble the
// business context, call the model, extract and validate any embedded action,
// and dispatch at most one ledger mutation. Every failure below this layer is
// recovered into a fallback reply: a turn always produces text, never an
// error, for the caller.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartkas-app/kasai/internal/dispatch"
	"github.com/smartkas-app/kasai/internal/extract"
	"github.com/smartkas-app/kasai/internal/ledger"
	"github.com/smartkas-app/kasai/internal/prompt"
	"github.com/smartkas-app/kasai/internal/resolve"
	"github.com/smartkas-app/kasai/internal/schema"
	"github.com/smartkas-app/kasai/internal/validate"
)

// Gateway is the model endpoint contract: free text in, free text out, may
// fail or time out. No schema conformance is guaranteed.
type Gateway interface {
	Complete(ctx context.Context, messages []prompt.Message, maxTokens int, temperature float32) (string, error)
	ScanImage(ctx context.Context, task, imageData string) (json.RawMessage, error)
}

// Mirror receives committed ledger changes for best-effort indexing.
type Mirror interface {
	TransactionCreated(tx ledger.Transaction)
}

// Fallback replies. A failed turn is never retried automatically; the caller
// may re-issue a new turn.
const (
	fallbackUpstream = "Maaf, asisten sedang tidak dapat dihubungi. Silakan coba lagi."
	fallbackCommand  = "Maaf, saya mencoba melakukan tindakan tetapi gagal memproses perintah."
)

const (
	chatMaxTokens   = 500
	chatTemperature = 0.2

	defaultTurnTimeout = 30 * time.Second
)

type Assistant struct {
	store       ledger.Store
	gateway     Gateway
	mirror      Mirror // optional; nil disables mirroring
	dispatcher  *dispatch.Dispatcher
	logger      *slog.Logger
	turnTimeout time.Duration
}

func New(store ledger.Store, gw Gateway, mirror Mirror, logger *slog.Logger) *Assistant {
	return &Assistant{
		store:       store,
		gateway:     gw,
		mirror:      mirror,
		dispatcher:  dispatch.New(store, logger),
		logger:      logger,
		turnTimeout: defaultTurnTimeout,
	}
}

// InterpretTurn runs one conversational turn for a business and returns the
// reply text. The gateway call is the single suspension point and carries a
// bounded timeout; everything after the reply arrives is synchronous and
// deterministic. At most one ledger mutation occurs per turn.
func (a *Assistant) InterpretTurn(ctx context.Context, businessID uuid.UUID, history []prompt.Turn, message, imageURL string) string {
	snap, err := a.snapshot(ctx, businessID)
	if err != nil {
		a.logger.Error("failed to assemble context", "business_id", businessID, "error", err)
		return fallbackUpstream
	}

	messages := prompt.Chat(snap, history, message, imageURL)

	gctx, cancel := context.WithTimeout(ctx, a.turnTimeout)
	defer cancel()
	reply, err := a.gateway.Complete(gctx, messages, chatMaxTokens, chatTemperature)
	if err != nil {
		a.logger.Error("gateway call failed", "business_id", businessID, "error", err)
		return fallbackUpstream
	}

	payload, found := extract.Find(reply)
	if !found {
		// Conversational prose: returned verbatim, ledger untouched.
		return reply
	}

	action, err := validate.ChatAction(payload)
	if err != nil {
		var sv *validate.SchemaViolation
		if errors.As(err, &sv) {
			a.logger.Warn("action payload rejected", "field", sv.Field, "reason", sv.Reason)
		} else {
			a.logger.Warn("action payload rejected", "error", err)
		}
		return fallbackCommand
	}

	result, err := a.dispatcher.Dispatch(ctx, snap, action)
	if err != nil {
		return a.dispatchFailureReply(err)
	}
	if result.Reply == "" {
		// Recognized no-op: fall back to the model's own text.
		return reply
	}

	if result.Transaction != nil && a.mirror != nil {
		tx := *result.Transaction
		go a.mirror.TransactionCreated(tx)
	}

	return result.Reply
}

func (a *Assistant) dispatchFailureReply(err error) string {
	var notFound *resolve.NotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("⚠️ Produk %q tidak ditemukan.", notFound.Name)
	}

	var ambiguous *resolve.AmbiguousError
	if errors.As(err, &ambiguous) {
		names := make([]string, len(ambiguous.Candidates))
		for i, p := range ambiguous.Candidates {
			names[i] = p.Name
		}
		return fmt.Sprintf("⚠️ Produk %q ambigu, cocok dengan beberapa produk: %s. Mohon sebutkan nama lengkapnya.",
			ambiguous.Name, strings.Join(names, ", "))
	}

	a.logger.Error("dispatch failed", "error", err)
	return fallbackCommand
}

// snapshot assembles the immutable per-turn context: full catalog plus the
// bounded recent-transaction window, most-recent-first.
func (a *Assistant) snapshot(ctx context.Context, businessID uuid.UUID) (ledger.Snapshot, error) {
	products, err := a.store.ListProducts(ctx, businessID)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("list products: %w", err)
	}
	txs, err := a.store.ListRecentTransactions(ctx, businessID, ledger.SnapshotTransactionCap)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("list recent transactions: %w", err)
	}
	return ledger.Snapshot{
		BusinessID:   businessID,
		Now:          time.Now(),
		Products:     products,
		Transactions: txs,
	}, nil
}

// ScanProducts extracts product rows from a stock-note image. Read-only:
// never dispatches an action.
func (a *Assistant) ScanProducts(ctx context.Context, imageData string) ([]validate.ProductRow, error) {
	payload, err := a.gateway.ScanImage(ctx, schema.TaskProductScan, imageData)
	if err != nil {
		return nil, err
	}
	return validate.Products(payload)
}

// ScanReceipt extracts a transaction record from a receipt image. Read-only.
func (a *Assistant) ScanReceipt(ctx context.Context, imageData string) (*validate.Receipt, error) {
	payload, err := a.gateway.ScanImage(ctx, schema.TaskReceiptScan, imageData)
	if err != nil {
		return nil, err
	}
	return validate.ReceiptScan(payload)
}
