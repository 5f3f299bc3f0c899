package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/smartkas-app/kasai/internal/ledger"
)

// InsertAlerts persists anomaly alerts for a business.
func (s *Store) InsertAlerts(ctx context.Context, alerts []ledger.Alert) error {
	for _, a := range alerts {
		id := a.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err := s.pool.Exec(ctx, `
			INSERT INTO alerts (id, business_id, title, description, severity, status, amount, recommendation, impact, suggested_actions, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			id, a.BusinessID, a.Title, a.Description, a.Severity, a.Status,
			a.Amount, a.Recommendation, a.Impact, a.SuggestedActions, a.Date,
		)
		if err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}
	return nil
}
