package registration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/geekskaran/cattel/internal/queue"
	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// The queue materializes entries through the record store; both
// backends must keep satisfying its read slice.
var (
	_ queue.RecordGetter = (*InMemoryStore)(nil)
	_ queue.RecordGetter = (*PostgresStore)(nil)
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) newRecord(tagID string) *models.CattleRecord {
	return &models.CattleRecord{
		ID:          id.NewRecordID(),
		TagID:       tagID,
		OwnerID:     id.NewUserID(),
		Region:      "Bihar",
		Status:      models.StatusPending,
		SubmittedAt: time.Now(),
		Trail: []models.TransitionEntry{
			{To: models.StatusPending, Action: models.ActionSubmit, At: time.Now()},
		},
	}
}

func (s *InMemoryStoreSuite) TestCreateAndGet() {
	record := s.newRecord("AB1234")
	s.Require().NoError(s.store.Create(context.Background(), record))

	got, err := s.store.Get(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(record.TagID, got.TagID)

	// The store hands out copies, not its own state.
	got.TagID = "mutated"
	again, err := s.store.Get(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal("AB1234", again.TagID)
}

func (s *InMemoryStoreSuite) TestCreateRejectsDuplicateTag() {
	s.Require().NoError(s.store.Create(context.Background(), s.newRecord("AB1234")))
	err := s.store.Create(context.Background(), s.newRecord("AB1234"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), id.NewRecordID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUpdateOptimisticConcurrency() {
	record := s.newRecord("AB1234")
	s.Require().NoError(s.store.Create(context.Background(), record))

	updated := record.Clone()
	updated.Status = models.StatusApproved
	updated.Trail = append(updated.Trail, models.TransitionEntry{
		From: models.StatusPending, To: models.StatusApproved, Action: models.ActionApprove, At: time.Now(),
	})
	s.Require().NoError(s.store.Update(context.Background(), updated, 1))

	// A second writer holding the stale trail length loses the race.
	stale := record.Clone()
	stale.Status = models.StatusDeclined
	err := s.store.Update(context.Background(), stale, 1)
	s.ErrorIs(err, sentinel.ErrConflict)

	got, err := s.store.Get(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, got.Status)
}

func (s *InMemoryStoreSuite) TestListByOwnerOrdersBySubmission() {
	owner := id.NewUserID()
	first := s.newRecord("AAA111")
	first.OwnerID = owner
	first.SubmittedAt = time.Now().Add(-time.Hour)
	second := s.newRecord("BBB222")
	second.OwnerID = owner

	s.Require().NoError(s.store.Create(context.Background(), second))
	s.Require().NoError(s.store.Create(context.Background(), first))
	s.Require().NoError(s.store.Create(context.Background(), s.newRecord("CCC333")))

	records, err := s.store.ListByOwner(context.Background(), owner)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("AAA111", records[0].TagID)
	s.Equal("BBB222", records[1].TagID)
}

func (s *InMemoryStoreSuite) TestCountByStatus() {
	approved := s.newRecord("AAA111")
	approved.Status = models.StatusApproved
	s.Require().NoError(s.store.Create(context.Background(), approved))
	s.Require().NoError(s.store.Create(context.Background(), s.newRecord("BBB222")))
	s.Require().NoError(s.store.Create(context.Background(), s.newRecord("CCC333")))

	counts, err := s.store.CountByStatus(context.Background())
	s.Require().NoError(err)
	s.Equal(2, counts[models.StatusPending])
	s.Equal(1, counts[models.StatusApproved])
}
