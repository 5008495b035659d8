package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trellis/internal/token/state"
	"trellis/pkg/domain"
	dErrors "trellis/pkg/domain-errors"
)

func newState() *state.State {
	st := state.New()
	st.Owner = domain.Address("owner")
	st.Agents[domain.Address("agent")] = struct{}{}
	return st
}

func TestRequireOwner(t *testing.T) {
	st := newState()

	assert.NoError(t, RequireOwner(st, domain.Address("owner")))

	for _, caller := range []domain.Address{"agent", "stranger", domain.Zero} {
		err := RequireOwner(st, caller)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), "caller %q", caller)
	}
}

func TestRequireOwnerOrAgent(t *testing.T) {
	st := newState()

	assert.NoError(t, RequireOwnerOrAgent(st, domain.Address("owner")))
	assert.NoError(t, RequireOwnerOrAgent(st, domain.Address("agent")))

	err := RequireOwnerOrAgent(st, domain.Address("stranger"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "not owner or agent")
}

func TestAgentSet(t *testing.T) {
	st := newState()

	t.Run("add is idempotent", func(t *testing.T) {
		assert.True(t, AddAgent(st, domain.Address("second")))
		assert.False(t, AddAgent(st, domain.Address("second")))
		assert.True(t, IsAgent(st, domain.Address("second")))
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		assert.True(t, RemoveAgent(st, domain.Address("second")))
		assert.False(t, RemoveAgent(st, domain.Address("second")))
		assert.False(t, IsAgent(st, domain.Address("second")))
	})
}

func TestTransferOwnership(t *testing.T) {
	st := newState()
	TransferOwnership(st, domain.Address("next"))
	assert.True(t, IsOwner(st, domain.Address("next")))
	assert.False(t, IsOwner(st, domain.Address("owner")))
}

func TestZeroAddressIsNeverOwner(t *testing.T) {
	st := state.New()
	// Uninitialized state has a zero owner; a zero caller must still not pass.
	assert.False(t, IsOwner(st, domain.Zero))
}
