// Package pause tracks the global paused flag. Only transfers are gated by
// it; issuance (mint/burn) proceeds while paused.
package pause

import (
	"trellis/internal/token/state"
	dErrors "trellis/pkg/domain-errors"
)

// RequireUnpaused rejects transfers while the ledger is paused.
func RequireUnpaused(st *state.State) error {
	if st.Paused {
		return dErrors.New(dErrors.CodePausedState, "token transfers are paused")
	}
	return nil
}

// Set flips the paused flag and reports whether it changed. Idempotent calls
// are permitted; they simply report no change.
func Set(st *state.State, paused bool) bool {
	if st.Paused == paused {
		return false
	}
	st.Paused = paused
	return true
}
