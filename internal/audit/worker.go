package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and forwards them to a sink.
// It keeps streaming off the ledger's hot path; a sink failure is logged,
// never propagated back into the operation that produced the event.
type Worker struct {
	sink  Sink
	inbox <-chan Event
	log   *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, log *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, log: log}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Send(ctx, event); err != nil {
				w.log.Warn("audit sink send failed",
					"action", event.Action, "event_id", event.ID, "error", err)
			}
		}
	}
}
