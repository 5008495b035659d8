package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trellis/pkg/domain"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. An optional
// forward channel feeds the streaming worker without blocking the ledger.
type Publisher struct {
	store   Store
	forward chan<- Event
}

type PublisherOption func(*Publisher)

// WithForward mirrors every stored event onto ch for asynchronous streaming.
// The channel should be buffered; a full channel drops the streamed copy, the
// stored copy is the durable record.
func WithForward(ch chan<- Event) PublisherOption {
	return func(p *Publisher) {
		p.forward = ch
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.forward != nil {
		select {
		case p.forward <- event:
		default:
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, addr domain.Address) ([]Event, error) {
	return p.store.ListByAddress(ctx, addr)
}
