package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

type fakeRecords struct {
	byID map[id.RecordID]*models.CattleRecord
}

func (f *fakeRecords) Get(_ context.Context, recordID id.RecordID) (*models.CattleRecord, error) {
	rec, ok := f.byID[recordID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
	}
	return rec, nil
}

type fakeRegions struct {
	regions map[id.Region]bool
	admins  map[id.UserID]id.Region
}

func (f *fakeRegions) ListRegions(_ context.Context) ([]id.Region, error) {
	var out []id.Region
	for r := range f.regions {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRegions) RegionOf(_ context.Context, adminID id.UserID) (id.Region, error) {
	region, ok := f.admins[adminID]
	if !ok {
		return "", dErrors.New(dErrors.CodeNotFound, "admin holds no region")
	}
	return region, nil
}

func pending(region id.Region, submittedAt time.Time) *models.CattleRecord {
	return &models.CattleRecord{
		ID:          id.NewRecordID(),
		TagID:       "AB1234",
		OwnerID:     id.NewUserID(),
		Region:      region,
		Status:      models.StatusPending,
		SubmittedAt: submittedAt,
	}
}

func newFixture(window time.Duration) (*Service, *fakeRecords, *fakeRegions) {
	records := &fakeRecords{byID: make(map[id.RecordID]*models.CattleRecord)}
	regions := &fakeRegions{
		regions: map[id.Region]bool{"Bihar": true, "Punjab": true},
		admins:  make(map[id.UserID]id.Region),
	}
	svc := NewService(NewInMemoryIndex(), records, regions, window)
	return svc, records, regions
}

func TestFIFOOrdering(t *testing.T) {
	ctx := context.Background()
	svc, records, regions := newFixture(48 * time.Hour)

	adminID := id.NewUserID()
	regions.admins[adminID] = "Bihar"

	base := time.Now()
	r1 := pending("Bihar", base.Add(-3*time.Hour))
	r2 := pending("Bihar", base.Add(-2*time.Hour))
	r3 := pending("Bihar", base.Add(-1*time.Hour))

	// Enqueue out of submission order; the view must still be FIFO.
	for _, rec := range []*models.CattleRecord{r2, r3, r1} {
		records.byID[rec.ID] = rec
		require.NoError(t, svc.Enqueue(ctx, rec))
	}

	t.Run("dequeue returns oldest until it leaves pending", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			got, err := svc.DequeueFor(ctx, adminID)
			require.NoError(t, err)
			assert.Equal(t, r1.ID, got.ID, "oldest record stays at the head until removed")
		}

		require.NoError(t, svc.Remove(ctx, "Bihar", r1.ID))
		got, err := svc.DequeueFor(ctx, adminID)
		require.NoError(t, err)
		assert.Equal(t, r2.ID, got.ID)
	})

	t.Run("list pending preserves order", func(t *testing.T) {
		recs, err := svc.ListPending(ctx, "Bihar")
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, r2.ID, recs[0].ID)
		assert.Equal(t, r3.ID, recs[1].ID)
	})
}

func TestEnqueueRejectsNonPending(t *testing.T) {
	svc, _, _ := newFixture(48 * time.Hour)
	rec := pending("Bihar", time.Now())
	rec.Status = models.StatusApproved

	err := svc.Enqueue(context.Background(), rec)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestDequeueForUnassignedAdmin(t *testing.T) {
	svc, _, _ := newFixture(48 * time.Hour)
	_, err := svc.DequeueFor(context.Background(), id.NewUserID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestEmptyQueue(t *testing.T) {
	svc, _, regions := newFixture(48 * time.Hour)
	adminID := id.NewUserID()
	regions.admins[adminID] = "Punjab"

	_, err := svc.DequeueFor(context.Background(), adminID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestOverdueFlagging(t *testing.T) {
	ctx := context.Background()
	svc, records, _ := newFixture(48 * time.Hour)

	now := time.Now()
	fresh := pending("Bihar", now.Add(-time.Hour))
	stale := pending("Bihar", now.Add(-49*time.Hour))
	other := pending("Punjab", now.Add(-72*time.Hour))

	for _, rec := range []*models.CattleRecord{fresh, stale, other} {
		records.byID[rec.ID] = rec
		require.NoError(t, svc.Enqueue(ctx, rec))
	}

	overdue, err := svc.ListOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, overdue, 2, "overdue view spans all regions")

	seen := make(map[id.RecordID]OverdueRecord)
	for _, o := range overdue {
		seen[o.Record.ID] = o
	}
	require.Contains(t, seen, stale.ID)
	require.Contains(t, seen, other.ID)
	assert.NotContains(t, seen, fresh.ID)

	// Advisory only: records remain pending, never auto-transitioned.
	assert.Equal(t, models.StatusPending, stale.Status)
	assert.Equal(t, models.StatusPending, other.Status)
	assert.Greater(t, seen[stale.ID].PendingFor, 48*time.Hour)
}

func TestPeekAge(t *testing.T) {
	svc, _, _ := newFixture(48 * time.Hour)
	now := time.Now()
	rec := pending("Bihar", now.Add(-30*time.Minute))
	assert.Equal(t, 30*time.Minute, svc.PeekAge(rec, now))
}
