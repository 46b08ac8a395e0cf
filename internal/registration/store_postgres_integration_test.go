//go:build integration

package registration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekskaran/cattel/internal/region"
	"github.com/geekskaran/cattel/internal/registration/models"
	"github.com/geekskaran/cattel/pkg/testutil/containers"
	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pg := containers.NewPostgresContainer(t, filepath.Join("..", "..", "migrations", "001_init.sql"))
	t.Cleanup(func() { pg.Terminate(ctx) })

	regions := region.NewPostgres(pg.DB)
	require.NoError(t, regions.EnsureRegion(ctx, "Bihar"))

	store := NewPostgresStore(pg.DB)

	newRecord := func(tagID string) *models.CattleRecord {
		owner := id.NewUserID()
		now := time.Now().UTC().Truncate(time.Microsecond)
		return &models.CattleRecord{
			ID:          id.NewRecordID(),
			TagID:       tagID,
			OwnerID:     owner,
			Region:      "Bihar",
			Images:      fullImageSet(),
			Status:      models.StatusPending,
			SubmittedAt: now,
			Trail: []models.TransitionEntry{
				{Actor: owner, At: now, To: models.StatusPending, Action: models.ActionSubmit},
			},
		}
	}

	t.Run("round-trips a record", func(t *testing.T) {
		rec := newRecord("AB1234")
		require.NoError(t, store.Create(ctx, rec))

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.TagID, got.TagID)
		assert.Equal(t, rec.OwnerID, got.OwnerID)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Len(t, got.Images, 14)
		require.Len(t, got.Trail, 1)
		assert.Equal(t, models.ActionSubmit, got.Trail[0].Action)
	})

	t.Run("rejects duplicate tags", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newRecord("CD5678")))
		err := store.Create(ctx, newRecord("CD5678"))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("update enforces the version check", func(t *testing.T) {
		rec := newRecord("EF9012")
		require.NoError(t, store.Create(ctx, rec))

		updated := rec.Clone()
		updated.Status = models.StatusApproved
		updated.Trail = append(updated.Trail, models.TransitionEntry{
			Actor: id.NewUserID(), At: time.Now().UTC(),
			From: models.StatusPending, To: models.StatusApproved, Action: models.ActionApprove,
		})
		require.NoError(t, store.Update(ctx, updated, 1))

		stale := rec.Clone()
		stale.Status = models.StatusDeclined
		assert.ErrorIs(t, store.Update(ctx, stale, 1), sentinel.ErrConflict)
	})

	t.Run("missing records are not found", func(t *testing.T) {
		_, err := store.Get(ctx, id.NewRecordID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
