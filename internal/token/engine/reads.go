package engine

import (
	"trellis/internal/token/freeze"
	"trellis/internal/token/state"
	"trellis/pkg/domain"
)

// Read operations never mutate state and may run concurrently with each
// other; they serialize only against mutations.

func (e *Engine) Initialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Initialized
}

func (e *Engine) Metadata() state.Metadata {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Meta
}

func (e *Engine) TotalSupply() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.TotalSupply
}

func (e *Engine) MaxTotalSupply() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.MaxSupply
}

func (e *Engine) BalanceOf(addr domain.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Lookup(addr).Balance
}

// FrozenTokens returns the partially frozen amount for addr.
func (e *Engine) FrozenTokens(addr domain.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return freeze.FrozenTokens(e.st, addr)
}

// AvailableBalance returns balance minus the frozen reserve: the maximum
// amount transferable out.
func (e *Engine) AvailableBalance(addr domain.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return freeze.Available(e.st, addr)
}

func (e *Engine) IsAddressFrozen(addr domain.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return freeze.IsAddressFrozen(e.st, addr)
}

func (e *Engine) Paused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Paused
}

func (e *Engine) Owner() domain.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Owner
}

func (e *Engine) IsAgent(addr domain.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.st.Agents[addr]
	return ok
}

// Snapshot returns a deep copy of the aggregate for checkpointing and
// reporting. The copy is detached; mutating it has no effect on the ledger.
func (e *Engine) Snapshot() *state.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Clone()
}
