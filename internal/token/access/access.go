// Package access answers "may caller C perform privileged action A?". Guards
// are pure functions of the current aggregate plus the caller identity; the
// engine composes them explicitly in front of each mutation.
package access

import (
	"trellis/internal/token/state"
	"trellis/pkg/domain"
	dErrors "trellis/pkg/domain-errors"
)

// IsOwner reports whether caller holds the single owner role.
func IsOwner(st *state.State, caller domain.Address) bool {
	return !caller.IsZero() && caller == st.Owner
}

// IsAgent reports whether caller has been granted operational privileges.
func IsAgent(st *state.State, caller domain.Address) bool {
	_, ok := st.Agents[caller]
	return ok
}

// RequireOwner gates owner-only actions: pause controls, agent management,
// ownership transfer.
func RequireOwner(st *state.State, caller domain.Address) error {
	if !IsOwner(st, caller) {
		return dErrors.Newf(dErrors.CodeUnauthorized, "caller %s is not the owner", caller)
	}
	return nil
}

// RequireOwnerOrAgent gates operational actions: minting, burning, freeze
// controls, and their batch variants.
func RequireOwnerOrAgent(st *state.State, caller domain.Address) error {
	if !IsOwner(st, caller) && !IsAgent(st, caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not owner or agent")
	}
	return nil
}

// AddAgent grants addr operational privileges. Idempotent; reports whether
// the set changed so the engine can skip redundant events.
func AddAgent(st *state.State, addr domain.Address) bool {
	if _, ok := st.Agents[addr]; ok {
		return false
	}
	st.Agents[addr] = struct{}{}
	return true
}

// RemoveAgent revokes operational privileges. Idempotent.
func RemoveAgent(st *state.State, addr domain.Address) bool {
	if _, ok := st.Agents[addr]; !ok {
		return false
	}
	delete(st.Agents, addr)
	return true
}

// TransferOwnership reassigns the single owner role.
func TransferOwnership(st *state.State, newOwner domain.Address) {
	st.Owner = newOwner
}
