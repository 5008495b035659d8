// Package state holds the single mutable aggregate the compliance engine
// operates on. Nothing outside the engine mutates it; batch operations work
// on a deep clone and commit by swapping the aggregate pointer.
package state

import (
	"trellis/pkg/domain"
)

// Metadata describes the token. Immutable after initialization.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Account is a holder record. Entries are created lazily on first
// balance-affecting reference and never deleted. Invariant: Frozen <= Balance.
type Account struct {
	Balance     uint64
	Frozen      uint64
	FullyFrozen bool
}

// State is the complete ledger aggregate: metadata, supply, holder accounts,
// access roles, the pause flag, and the one-way initialization latch.
// Invariant: TotalSupply <= MaxSupply, and the sum of all account balances
// equals TotalSupply.
type State struct {
	Initialized bool

	Meta        Metadata
	TotalSupply uint64
	MaxSupply   uint64

	Owner  domain.Address
	Agents map[domain.Address]struct{}

	Paused bool

	Accounts map[domain.Address]*Account
}

// New returns an empty, uninitialized aggregate.
func New() *State {
	return &State{
		Agents:   make(map[domain.Address]struct{}),
		Accounts: make(map[domain.Address]*Account),
	}
}

// Account returns the mutable record for addr, creating it on first use.
func (s *State) Account(addr domain.Address) *Account {
	acct, ok := s.Accounts[addr]
	if !ok {
		acct = &Account{}
		s.Accounts[addr] = acct
	}
	return acct
}

// Lookup returns a copy of the record for addr without creating one. Absent
// accounts read as zero balance, zero frozen, not frozen.
func (s *State) Lookup(addr domain.Address) Account {
	if acct, ok := s.Accounts[addr]; ok {
		return *acct
	}
	return Account{}
}

// Clone deep-copies the aggregate. Batches mutate the clone so a failing
// element discards every earlier mutation in the same batch.
func (s *State) Clone() *State {
	c := &State{
		Initialized: s.Initialized,
		Meta:        s.Meta,
		TotalSupply: s.TotalSupply,
		MaxSupply:   s.MaxSupply,
		Owner:       s.Owner,
		Paused:      s.Paused,
		Agents:      make(map[domain.Address]struct{}, len(s.Agents)),
		Accounts:    make(map[domain.Address]*Account, len(s.Accounts)),
	}
	for agent := range s.Agents {
		c.Agents[agent] = struct{}{}
	}
	for addr, acct := range s.Accounts {
		copied := *acct
		c.Accounts[addr] = &copied
	}
	return c
}
