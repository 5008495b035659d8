//go:build integration

package checkpoint_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trellis/internal/token/checkpoint"
	"trellis/pkg/domain"
	"trellis/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *checkpoint.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = checkpoint.NewPostgres(s.postgres.Pool)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "ledger_checkpoints")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestLatestOnEmptyStore() {
	snap, err := s.store.Latest(context.Background())
	s.Require().NoError(err)
	s.Nil(snap)
}

func (s *PostgresStoreSuite) TestSaveAndLoadRoundtrip() {
	ctx := context.Background()
	takenAt := time.Now().UTC().Truncate(time.Microsecond)

	saved := checkpoint.Snapshot{
		TakenAt:     takenAt,
		TotalSupply: 500,
		MaxSupply:   1000000,
		Paused:      true,
		Holders: []checkpoint.Holder{
			{Address: domain.Address("h1"), Balance: 300, Frozen: 100},
			{Address: domain.Address("h2"), Balance: 200, Frozen: 0},
		},
	}
	s.Require().NoError(s.store.Save(ctx, saved))

	got, err := s.store.Latest(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(uint64(500), got.TotalSupply)
	s.Equal(uint64(1000000), got.MaxSupply)
	s.True(got.Paused)
	s.True(takenAt.Equal(got.TakenAt))
	s.Require().Len(got.Holders, 2)
	// Holders come back ordered by address.
	s.Equal(domain.Address("h1"), got.Holders[0].Address)
	s.Equal(uint64(100), got.Holders[0].Frozen)
	s.Equal(domain.Address("h2"), got.Holders[1].Address)
}

func (s *PostgresStoreSuite) TestLatestPicksNewestSnapshot() {
	ctx := context.Background()
	base := time.Now().UTC()

	s.Require().NoError(s.store.Save(ctx, checkpoint.Snapshot{
		TakenAt: base, TotalSupply: 100, MaxSupply: 1000, Paused: true,
	}))
	s.Require().NoError(s.store.Save(ctx, checkpoint.Snapshot{
		TakenAt: base.Add(time.Minute), TotalSupply: 250, MaxSupply: 1000, Paused: false,
	}))

	got, err := s.store.Latest(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(uint64(250), got.TotalSupply)
	s.False(got.Paused)
}

func (s *PostgresStoreSuite) TestSnapshotWithNoHolders() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, checkpoint.Snapshot{
		TakenAt: time.Now().UTC(), TotalSupply: 0, MaxSupply: 1000, Paused: true,
	}))

	got, err := s.store.Latest(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Empty(got.Holders)
}
