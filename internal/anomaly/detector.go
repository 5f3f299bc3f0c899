// Package anomaly scans a business's recent transactions for unusual
// activity via the model and persists findings as alerts.
package anomaly

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smartkas-app/kasai/internal/extract"
	"github.com/smartkas-app/kasai/internal/ledger"
	"github.com/smartkas-app/kasai/internal/prompt"
	"github.com/smartkas-app/kasai/internal/validate"
)

const (
	// scanWindow is how many recent transactions feed one scan.
	scanWindow = 50
	// minTransactions below which a business is skipped: too little data to
	// judge anomalies.
	minTransactions = 5

	scanMaxTokens   = 1000
	scanTemperature = 0.1
)

// Completer is the slice of the model gateway the detector needs.
type Completer interface {
	Complete(ctx context.Context, messages []prompt.Message, maxTokens int, temperature float32) (string, error)
}

// Mirror receives persisted alerts for best-effort indexing.
type Mirror interface {
	AlertCreated(alert ledger.Alert)
}

type Detector struct {
	store   ledger.Store
	gateway Completer
	mirror  Mirror // optional
	logger  *slog.Logger
}

func NewDetector(store ledger.Store, gw Completer, mirror Mirror, logger *slog.Logger) *Detector {
	return &Detector{store: store, gateway: gw, mirror: mirror, logger: logger}
}

// Scan analyzes a business's recent transactions. An empty result means a
// clean ledger, not a failure. With dryRun set, findings are returned but not
// persisted or mirrored.
func (d *Detector) Scan(ctx context.Context, businessID uuid.UUID, dryRun bool) ([]validate.Anomaly, error) {
	txs, err := d.store.ListRecentTransactions(ctx, businessID, scanWindow)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) < minTransactions {
		d.logger.Info("skipping anomaly scan, not enough data",
			"business_id", businessID, "transactions", len(txs))
		return nil, nil
	}

	reply, err := d.gateway.Complete(ctx, prompt.Anomaly(txs), scanMaxTokens, scanTemperature)
	if err != nil {
		return nil, fmt.Errorf("anomaly completion: %w", err)
	}

	payload, found := extract.Find(reply)
	if !found {
		d.logger.Warn("no structured payload in anomaly reply", "business_id", businessID)
		return nil, nil
	}

	anomalies, err := validate.Anomalies(payload)
	if err != nil {
		return nil, fmt.Errorf("validate anomalies: %w", err)
	}
	if dryRun || len(anomalies) == 0 {
		return anomalies, nil
	}

	alerts := make([]ledger.Alert, 0, len(anomalies))
	for _, a := range anomalies {
		alerts = append(alerts, ledger.Alert{
			ID:               uuid.New(),
			BusinessID:       businessID,
			Title:            a.Title,
			Description:      a.Description,
			Severity:         a.Severity,
			Status:           "new",
			Amount:           a.Amount,
			Recommendation:   a.Recommendation,
			Impact:           a.Impact,
			SuggestedActions: a.SuggestedActions,
			Date:             time.Now(),
		})
	}
	if err := d.store.InsertAlerts(ctx, alerts); err != nil {
		return nil, fmt.Errorf("insert alerts: %w", err)
	}

	if d.mirror != nil {
		go func() {
			for _, alert := range alerts {
				d.mirror.AlertCreated(alert)
			}
		}()
	}

	d.logger.Info("anomaly scan complete", "business_id", businessID, "alerts", len(alerts))
	return anomalies, nil
}
