package supply

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trellis/internal/token/state"
	"trellis/pkg/domain"
	dErrors "trellis/pkg/domain-errors"
)

const holder = domain.Address("holder")

func cappedState(max uint64) *state.State {
	st := state.New()
	st.MaxSupply = max
	return st
}

func TestMint(t *testing.T) {
	st := cappedState(1000)

	t.Run("credits balance and supply", func(t *testing.T) {
		require.NoError(t, Mint(st, holder, 600))
		assert.Equal(t, uint64(600), st.Lookup(holder).Balance)
		assert.Equal(t, uint64(600), st.TotalSupply)
	})

	t.Run("rejects exceeding the cap", func(t *testing.T) {
		err := Mint(st, holder, 401)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSupplyCapExceeded))
		assert.Equal(t, uint64(600), st.TotalSupply)
	})

	t.Run("exactly reaching the cap is allowed", func(t *testing.T) {
		require.NoError(t, Mint(st, holder, 400))
		assert.Equal(t, uint64(1000), st.TotalSupply)
	})
}

func TestMintHeadroomNearMaxUint64(t *testing.T) {
	// The cap check must not wrap when the cap sits at the type's ceiling.
	st := cappedState(math.MaxUint64)
	require.NoError(t, Mint(st, holder, math.MaxUint64))
	err := Mint(st, holder, 1)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSupplyCapExceeded))
}

func TestBurn(t *testing.T) {
	st := cappedState(1000)
	require.NoError(t, Mint(st, holder, 500))

	t.Run("debits balance and supply", func(t *testing.T) {
		released, err := Burn(st, holder, 200)
		require.NoError(t, err)
		assert.Zero(t, released)
		assert.Equal(t, uint64(300), st.Lookup(holder).Balance)
		assert.Equal(t, uint64(300), st.TotalSupply)
	})

	t.Run("rejects burning more than held", func(t *testing.T) {
		_, err := Burn(st, holder, 301)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
	})

	t.Run("clamps frozen reserve to the new balance", func(t *testing.T) {
		st.Account(holder).Frozen = 300
		released, err := Burn(st, holder, 100)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), released)
		assert.Equal(t, uint64(200), st.Lookup(holder).Frozen)
		assert.Equal(t, uint64(200), st.Lookup(holder).Balance)
	})
}

func TestMove(t *testing.T) {
	st := cappedState(1000)
	require.NoError(t, Mint(st, holder, 500))

	other := domain.Address("other")
	Move(st, holder, other, 200)

	assert.Equal(t, uint64(300), st.Lookup(holder).Balance)
	assert.Equal(t, uint64(200), st.Lookup(other).Balance)
	assert.Equal(t, uint64(500), st.TotalSupply, "moves never change supply")
}
