// Package freeze tracks per-address full-freeze flags and partially frozen
// amounts. A partial freeze reserves part of a balance; the reserved portion
// can never move, so freezing beyond the held balance is rejected, not
// clamped.
package freeze

import (
	"trellis/internal/token/state"
	"trellis/pkg/domain"
	dErrors "trellis/pkg/domain-errors"
)

// SetAddressFrozen sets or clears the full-freeze flag for addr.
func SetAddressFrozen(st *state.State, addr domain.Address, frozen bool) {
	st.Account(addr).FullyFrozen = frozen
}

// IsAddressFrozen reports the full-freeze flag for addr.
func IsAddressFrozen(st *state.State, addr domain.Address) bool {
	return st.Lookup(addr).FullyFrozen
}

// FreezePartial reserves amount additional tokens of addr's balance.
func FreezePartial(st *state.State, addr domain.Address, amount uint64) error {
	acct := st.Account(addr)
	if amount > acct.Balance-acct.Frozen {
		return dErrors.Newf(dErrors.CodeInsufficientBalance,
			"cannot freeze %d tokens of %s: balance %d, already frozen %d",
			amount, addr, acct.Balance, acct.Frozen)
	}
	acct.Frozen += amount
	return nil
}

// UnfreezePartial releases amount previously reserved tokens of addr.
func UnfreezePartial(st *state.State, addr domain.Address, amount uint64) error {
	acct := st.Account(addr)
	if amount > acct.Frozen {
		return dErrors.Newf(dErrors.CodeInsufficientBalance,
			"cannot unfreeze %d tokens of %s: only %d frozen",
			amount, addr, acct.Frozen)
	}
	acct.Frozen -= amount
	return nil
}

// FrozenTokens returns the partially frozen amount for addr.
func FrozenTokens(st *state.State, addr domain.Address) uint64 {
	return st.Lookup(addr).Frozen
}

// Available returns the maximum amount transferable out of addr:
// balance minus the partially frozen reserve.
func Available(st *state.State, addr domain.Address) uint64 {
	acct := st.Lookup(addr)
	return acct.Balance - acct.Frozen
}

// RequireNotFrozen rejects the operation if any listed address carries a
// full freeze.
func RequireNotFrozen(st *state.State, addrs ...domain.Address) error {
	for _, addr := range addrs {
		if st.Lookup(addr).FullyFrozen {
			return dErrors.Newf(dErrors.CodeFrozenWallet, "wallet %s is frozen", addr)
		}
	}
	return nil
}

// RequireAvailable rejects an outbound movement exceeding the sender's
// unreserved balance. Distinct from a plain insufficient balance: the tokens
// may exist but be reserved by a partial freeze.
func RequireAvailable(st *state.State, addr domain.Address, amount uint64) error {
	if available := Available(st, addr); amount > available {
		return dErrors.Newf(dErrors.CodeInsufficientAvailableBalance,
			"%s has %d tokens available, %d requested", addr, available, amount)
	}
	return nil
}
