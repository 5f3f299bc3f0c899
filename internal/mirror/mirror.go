// Package mirror publishes ledger change events for the external search
// indexer. Mirroring is best-effort and asynchronous: a publish failure is
// logged and never surfaced into the turn that caused it.
package mirror

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smartkas-app/kasai/internal/ledger"
)

// Subjects consumed by the indexer.
const (
	SubjectTransactionCreated = "ledger.transaction.created"
	SubjectAlertCreated       = "ledger.alert.created"
)

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.conn.Publish(subject, payload)
}

// TransactionCreated mirrors a committed transaction. Intended to be called
// from a goroutine; errors are logged, not returned.
func (p *Publisher) TransactionCreated(tx ledger.Transaction) {
	if err := p.publish(SubjectTransactionCreated, tx); err != nil {
		p.logger.Error("failed to mirror transaction", "transaction_id", tx.ID, "error", err)
	}
}

// AlertCreated mirrors a persisted anomaly alert.
func (p *Publisher) AlertCreated(alert ledger.Alert) {
	if err := p.publish(SubjectAlertCreated, alert); err != nil {
		p.logger.Error("failed to mirror alert", "alert_id", alert.ID, "error", err)
	}
}

func (p *Publisher) Close() {
	p.conn.Close()
}
