//go:build integration

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trellis/internal/identity"
	"trellis/pkg/domain"
	"trellis/pkg/testutil/containers"
)

type CachedGateSuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	registry *identity.Registry
	gate     *identity.CachedGate
}

func TestCachedGateSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedGateSuite))
}

func (s *CachedGateSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *CachedGateSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.FlushAll(ctx))
	s.registry = identity.NewRegistry()
	s.gate = identity.NewCachedGate(s.redis.Client, s.registry)
}

func (s *CachedGateSuite) TestCachesPositiveVerdict() {
	ctx := context.Background()
	addr := domain.Address("h1")
	s.Require().NoError(s.registry.Register(ctx, addr))

	ok, err := s.gate.IsEligible(ctx, addr)
	s.Require().NoError(err)
	s.True(ok)

	// The verdict is now cached; a registry revocation is invisible until
	// the entry expires or is invalidated.
	s.Require().NoError(s.registry.Deregister(ctx, addr))
	ok, err = s.gate.IsEligible(ctx, addr)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *CachedGateSuite) TestCachesNegativeVerdict() {
	ctx := context.Background()
	addr := domain.Address("h2")

	ok, err := s.gate.IsEligible(ctx, addr)
	s.Require().NoError(err)
	s.False(ok)

	// Registration after a cached miss stays hidden until invalidation.
	s.Require().NoError(s.registry.Register(ctx, addr))
	ok, err = s.gate.IsEligible(ctx, addr)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CachedGateSuite) TestInvalidateForcesRecheck() {
	ctx := context.Background()
	addr := domain.Address("h3")

	ok, err := s.gate.IsEligible(ctx, addr)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.registry.Register(ctx, addr))
	s.Require().NoError(s.gate.Invalidate(ctx, addr))

	ok, err = s.gate.IsEligible(ctx, addr)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *CachedGateSuite) TestVerdictExpiresWithTTL() {
	ctx := context.Background()
	addr := domain.Address("h4")
	gate := identity.NewCachedGate(s.redis.Client, s.registry,
		identity.WithTTL(100*time.Millisecond))

	ok, err := gate.IsEligible(ctx, addr)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.registry.Register(ctx, addr))

	s.Require().Eventually(func() bool {
		ok, err := gate.IsEligible(ctx, addr)
		return err == nil && ok
	}, 2*time.Second, 50*time.Millisecond, "cache entry should expire and pick up the registration")
}
