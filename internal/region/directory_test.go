package region

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

type DirectorySuite struct {
	suite.Suite
	dir *Directory
	ctx context.Context
}

func (s *DirectorySuite) SetupTest() {
	s.dir = NewDirectory(NewInMemoryStore())
	s.ctx = context.Background()
	s.Require().NoError(s.dir.Seed(s.ctx, id.SeedRegions()))
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) TestAssignment() {
	adminA := id.NewUserID()
	adminB := id.NewUserID()

	s.Run("assigns an admin to an empty region", func() {
		s.Require().NoError(s.dir.Assign(s.ctx, "Bihar", adminA))

		got, err := s.dir.AdminOf(s.ctx, "Bihar")
		s.Require().NoError(err)
		s.Equal(adminA, got)
	})

	s.Run("reassigning the same admin is idempotent", func() {
		s.Require().NoError(s.dir.Assign(s.ctx, "Bihar", adminA))
	})

	s.Run("assigning a different admin to a held region fails", func() {
		err := s.dir.Assign(s.ctx, "Bihar", adminB)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeRegionAssigned))
	})

	s.Run("an admin cannot hold two regions", func() {
		err := s.dir.Assign(s.ctx, "Punjab", adminA)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *DirectorySuite) TestUnassign() {
	adminA := id.NewUserID()
	s.Require().NoError(s.dir.Assign(s.ctx, "Gujarat", adminA))

	s.Require().NoError(s.dir.Unassign(s.ctx, "Gujarat"))

	_, err := s.dir.AdminOf(s.ctx, "Gujarat")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	// Slot is free again for a different admin.
	s.Require().NoError(s.dir.Assign(s.ctx, "Gujarat", id.NewUserID()))
}

func (s *DirectorySuite) TestLookups() {
	s.Run("unassigned region reports not found", func() {
		_, err := s.dir.AdminOf(s.ctx, "Rajasthan")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown region cannot be assigned", func() {
		err := s.dir.Assign(s.ctx, "Atlantis", id.NewUserID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("region of admin reverse lookup", func() {
		adminA := id.NewUserID()
		s.Require().NoError(s.dir.Assign(s.ctx, "Maharashtra", adminA))

		region, err := s.dir.RegionOf(s.ctx, adminA)
		s.Require().NoError(err)
		s.Equal(id.Region("Maharashtra"), region)
	})

	s.Run("seeded regions are listed", func() {
		regions, err := s.dir.ListRegions(s.ctx)
		s.Require().NoError(err)
		s.Len(regions, len(id.SeedRegions()))
	})
}

// The one-region-per-admin rule must hold inside Store.Assign itself,
// not only in the directory's pre-check, so concurrent assigns cannot
// slip an admin into two regions.
func TestInMemoryStoreAssignEnforcesSingleRegion(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.EnsureRegion(ctx, "Bihar"))
	require.NoError(t, store.EnsureRegion(ctx, "Punjab"))

	adminID := id.NewUserID()
	require.NoError(t, store.Assign(ctx, "Bihar", adminID))

	err := store.Assign(ctx, "Punjab", adminID)
	require.ErrorIs(t, err, sentinel.ErrConflict)

	// Re-assigning the held region stays idempotent.
	require.NoError(t, store.Assign(ctx, "Bihar", adminID))
}
