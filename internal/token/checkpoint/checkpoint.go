// Package checkpoint persists periodic snapshots of holder balances for
// regulatory reporting. The in-memory aggregate stays the source of truth;
// checkpoints are derived, append-only data.
package checkpoint

import (
	"context"
	"time"

	"trellis/internal/token/state"
	"trellis/pkg/domain"
)

// Holder is one account row inside a snapshot.
type Holder struct {
	Address domain.Address
	Balance uint64
	Frozen  uint64
}

// Snapshot is a point-in-time view of the ledger.
type Snapshot struct {
	TakenAt     time.Time
	TotalSupply uint64
	MaxSupply   uint64
	Paused      bool
	Holders     []Holder
}

// Store persists snapshots.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Latest(ctx context.Context) (*Snapshot, error)
}

// FromState flattens a detached state clone into a snapshot.
func FromState(st *state.State, takenAt time.Time) Snapshot {
	snap := Snapshot{
		TakenAt:     takenAt,
		TotalSupply: st.TotalSupply,
		MaxSupply:   st.MaxSupply,
		Paused:      st.Paused,
		Holders:     make([]Holder, 0, len(st.Accounts)),
	}
	for addr, acct := range st.Accounts {
		snap.Holders = append(snap.Holders, Holder{
			Address: addr,
			Balance: acct.Balance,
			Frozen:  acct.Frozen,
		})
	}
	return snap
}
