// Package supply performs the balance and total-supply arithmetic. All checks
// are phrased as headroom comparisons so uint64 arithmetic can never wrap:
// TotalSupply <= MaxSupply holds at all times, therefore every balance is
// bounded by MaxSupply as well.
package supply

import (
	"trellis/internal/token/state"
	"trellis/pkg/domain"
	dErrors "trellis/pkg/domain-errors"
)

// Mint credits amount to addr and grows total supply, enforcing the
// immutable supply cap.
func Mint(st *state.State, addr domain.Address, amount uint64) error {
	if amount > st.MaxSupply-st.TotalSupply {
		return dErrors.New(dErrors.CodeSupplyCapExceeded, "minting exceeds total supply limit")
	}
	st.Account(addr).Balance += amount
	st.TotalSupply += amount
	return nil
}

// Burn debits amount from addr and shrinks total supply. If the burn drives
// the balance below the frozen reserve, the reserve is clamped down to the
// new balance so Frozen <= Balance keeps holding. The released amount is
// returned so the engine can report the adjustment.
func Burn(st *state.State, addr domain.Address, amount uint64) (released uint64, err error) {
	acct := st.Account(addr)
	if amount > acct.Balance {
		return 0, dErrors.Newf(dErrors.CodeInsufficientBalance,
			"%s holds %d tokens, %d requested", addr, acct.Balance, amount)
	}
	acct.Balance -= amount
	st.TotalSupply -= amount
	if acct.Frozen > acct.Balance {
		released = acct.Frozen - acct.Balance
		acct.Frozen = acct.Balance
	}
	return released, nil
}

// Move shifts amount from one holder to another. Total supply is unchanged.
// Sufficiency against the sender's available balance is the caller's guard;
// Move only performs the mutation.
func Move(st *state.State, from, to domain.Address, amount uint64) {
	st.Account(from).Balance -= amount
	st.Account(to).Balance += amount
}
