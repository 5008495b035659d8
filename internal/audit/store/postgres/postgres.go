// Package postgres persists the audit trail in PostgreSQL via database/sql.
// The driver is registered by the binary (lib/pq in cmd/server).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"trellis/internal/audit"
	"trellis/pkg/domain"
)

// PostgresStore is the durable audit trail for regulated deployments.
type PostgresStore struct {
	db *sql.DB
}

var _ audit.Store = (*PostgresStore)(nil)

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the audit table when it does not exist yet. Called once at
// startup; real schema management can take over later.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_audit_events (
			id            UUID PRIMARY KEY,
			occurred_at   TIMESTAMPTZ NOT NULL,
			action        TEXT NOT NULL,
			actor         TEXT NOT NULL,
			address       TEXT NOT NULL DEFAULT '',
			counterparty  TEXT NOT NULL DEFAULT '',
			amount        NUMERIC(20,0) NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("migrate audit events: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS ledger_audit_events_address_idx
		ON ledger_audit_events (address)`)
	if err != nil {
		return fmt.Errorf("migrate audit index: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_audit_events
			(id, occurred_at, action, actor, address, counterparty, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID,
		event.Timestamp,
		string(event.Action),
		event.Actor.String(),
		event.Address.String(),
		event.Counterparty.String(),
		event.Amount,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByAddress(ctx context.Context, addr domain.Address) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, action, actor, address, counterparty, amount
		FROM ledger_audit_events
		WHERE address = $1 OR counterparty = $1 OR actor = $1
		ORDER BY occurred_at`,
		addr.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			ev                         audit.Event
			action, actor, subject, cp string
		)
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &action, &actor, &subject, &cp, &ev.Amount); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Action = audit.Action(action)
		ev.Actor = domain.Address(actor)
		ev.Address = domain.Address(subject)
		ev.Counterparty = domain.Address(cp)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
