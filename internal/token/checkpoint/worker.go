package checkpoint

import (
	"context"
	"log/slog"
	"time"

	"trellis/internal/token/state"
)

// Source provides a detached copy of the ledger aggregate. The engine
// satisfies this directly.
type Source interface {
	Snapshot() *state.State
}

// Worker snapshots the ledger on a fixed interval. A failed save is logged
// and retried on the next tick; the ledger itself is unaffected.
type Worker struct {
	source   Source
	store    Store
	interval time.Duration
	log      *slog.Logger
}

func NewWorker(source Source, store Store, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{source: source, store: store, interval: interval, log: log}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			snap := FromState(w.source.Snapshot(), now)
			if err := w.store.Save(ctx, snap); err != nil {
				w.log.Warn("checkpoint save failed", "error", err)
			}
		}
	}
}
