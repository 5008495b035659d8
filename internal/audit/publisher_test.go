package audit_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trellis/internal/audit"
	"trellis/internal/audit/store/memory"
	"trellis/pkg/domain"
)

func TestEmitFillsIdentityFields(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := audit.NewPublisher(store)

	err := pub.Emit(context.Background(), audit.Event{
		Action:  audit.ActionMint,
		Actor:   domain.Address("owner"),
		Address: domain.Address("h1"),
		Amount:  100,
	})
	require.NoError(t, err)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, audit.ActionMint, events[0].Action)
}

func TestEmitForwardsWithoutBlocking(t *testing.T) {
	store := memory.NewInMemoryStore()
	forward := make(chan audit.Event, 1)
	pub := audit.NewPublisher(store, audit.WithForward(forward))

	ctx := context.Background()
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: audit.ActionPaused, Actor: "owner"}))

	select {
	case ev := <-forward:
		assert.Equal(t, audit.ActionPaused, ev.Action)
	default:
		t.Fatal("expected event on the forward channel")
	}

	// Fill the channel; the next emit must store and return, not block.
	forward <- audit.Event{}
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: audit.ActionUnpaused, Actor: "owner"}))
	stored, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestListByAddress(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := audit.NewPublisher(store)
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, audit.Event{
		Action: audit.ActionTransfer, Actor: "h1", Address: "h1", Counterparty: "h2", Amount: 50,
	}))
	require.NoError(t, pub.Emit(ctx, audit.Event{
		Action: audit.ActionMint, Actor: "owner", Address: "h3", Amount: 10,
	}))

	t.Run("matches the primary address", func(t *testing.T) {
		events, err := pub.List(ctx, domain.Address("h1"))
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("matches the counterparty", func(t *testing.T) {
		events, err := pub.List(ctx, domain.Address("h2"))
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("no match yields empty", func(t *testing.T) {
		events, err := pub.List(ctx, domain.Address("h9"))
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
