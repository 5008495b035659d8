package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trellis/pkg/domain"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	t.Run("unknown address is ineligible", func(t *testing.T) {
		ok, err := reg.IsEligible(ctx, domain.Address("h1"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("register grants eligibility for all given addresses", func(t *testing.T) {
		require.NoError(t, reg.Register(ctx, domain.Address("h1"), domain.Address("h2")))
		for _, addr := range []domain.Address{"h1", "h2"} {
			ok, err := reg.IsEligible(ctx, addr)
			require.NoError(t, err)
			assert.True(t, ok, "address %s", addr)
		}
	})

	t.Run("deregister revokes eligibility", func(t *testing.T) {
		require.NoError(t, reg.Deregister(ctx, domain.Address("h1")))
		ok, err := reg.IsEligible(ctx, domain.Address("h1"))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = reg.IsEligible(ctx, domain.Address("h2"))
		require.NoError(t, err)
		assert.True(t, ok, "other registrations stay intact")
	})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)
	for i := 0; i < goroutines; i++ {
		addr := domain.Address(rune('a' + i%26))
		go func() {
			defer wg.Done()
			_ = reg.Register(ctx, addr)
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.IsEligible(ctx, addr)
		}()
	}
	wg.Wait()
}
