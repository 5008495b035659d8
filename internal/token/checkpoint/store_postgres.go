package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trellis/pkg/domain"
)

// PostgresStore writes snapshots through a pgx pool. Each snapshot is one
// header row plus one row per holder, inserted in a single transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the checkpoint tables when they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_checkpoints (
			id           BIGSERIAL PRIMARY KEY,
			taken_at     TIMESTAMPTZ NOT NULL,
			total_supply NUMERIC(20,0) NOT NULL,
			max_supply   NUMERIC(20,0) NOT NULL,
			paused       BOOLEAN NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate checkpoints: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_checkpoint_holders (
			checkpoint_id BIGINT NOT NULL REFERENCES ledger_checkpoints(id),
			address       TEXT NOT NULL,
			balance       NUMERIC(20,0) NOT NULL,
			frozen        NUMERIC(20,0) NOT NULL,
			PRIMARY KEY (checkpoint_id, address)
		)`)
	if err != nil {
		return fmt.Errorf("migrate checkpoint holders: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin checkpoint tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO ledger_checkpoints (taken_at, total_supply, max_supply, paused)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		snap.TakenAt, snap.TotalSupply, snap.MaxSupply, snap.Paused,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert checkpoint: %w", err)
	}

	for _, holder := range snap.Holders {
		_, err := tx.Exec(ctx, `
			INSERT INTO ledger_checkpoint_holders (checkpoint_id, address, balance, frozen)
			VALUES ($1, $2, $3, $4)`,
			id, holder.Address.String(), holder.Balance, holder.Frozen,
		)
		if err != nil {
			return fmt.Errorf("insert checkpoint holder: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context) (*Snapshot, error) {
	var (
		id   int64
		snap Snapshot
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, taken_at, total_supply, max_supply, paused
		FROM ledger_checkpoints
		ORDER BY id DESC
		LIMIT 1`).Scan(&id, &snap.TakenAt, &snap.TotalSupply, &snap.MaxSupply, &snap.Paused)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest checkpoint: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT address, balance, frozen
		FROM ledger_checkpoint_holders
		WHERE checkpoint_id = $1
		ORDER BY address`, id)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint holders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			addr   string
			holder Holder
		)
		if err := rows.Scan(&addr, &holder.Balance, &holder.Frozen); err != nil {
			return nil, fmt.Errorf("scan checkpoint holder: %w", err)
		}
		holder.Address = domain.Address(addr)
		snap.Holders = append(snap.Holders, holder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoint holders: %w", err)
	}
	return &snap, nil
}
