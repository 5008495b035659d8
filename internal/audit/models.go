package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trellis/pkg/domain"
)

// Action names the ledger mutation an event records.
type Action string

const (
	ActionInitialized          Action = "initialized"
	ActionMint                 Action = "mint"
	ActionBurn                 Action = "burn"
	ActionTransfer             Action = "transfer"
	ActionTokensFrozen         Action = "tokens_frozen"
	ActionTokensUnfrozen       Action = "tokens_unfrozen"
	ActionAddressFrozen        Action = "address_frozen"
	ActionAddressUnfrozen      Action = "address_unfrozen"
	ActionPaused               Action = "paused"
	ActionUnpaused             Action = "unpaused"
	ActionAgentAdded           Action = "agent_added"
	ActionAgentRemoved         Action = "agent_removed"
	ActionOwnershipTransferred Action = "ownership_transferred"
)

// Event is emitted after a mutation commits. Events are observability output;
// the core never consumes them. Keep the shape transport-agnostic so stores
// and sinks can fan out.
type Event struct {
	ID           uuid.UUID      `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Action       Action         `json:"action"`
	Actor        domain.Address `json:"actor"`
	Address      domain.Address `json:"address,omitempty"`
	Counterparty domain.Address `json:"counterparty,omitempty"`
	Amount       uint64         `json:"amount,omitempty"`
}

// Store persists the append-only event trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAddress(ctx context.Context, addr domain.Address) ([]Event, error)
}

// Sink streams events to an external system, e.g. a Kafka topic.
type Sink interface {
	Send(ctx context.Context, event Event) error
}
