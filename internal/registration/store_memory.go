package registration

import (
	"context"
	"sort"
	"sync"

	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// InMemoryStore keeps records in process memory. Records are cloned on
// the way in and out so callers never share state with the store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.RecordID]*models.CattleRecord
	byTag   map[string]id.RecordID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[id.RecordID]*models.CattleRecord),
		byTag:   make(map[string]id.RecordID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, record *models.CattleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byTag[record.TagID]; taken {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = record.Clone()
	s.byTag[record.TagID] = record.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, recordID id.RecordID) (*models.CattleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return record.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, record *models.CattleRecord, expectedTrailLen int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[record.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if len(current.Trail) != expectedTrailLen {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = record.Clone()
	return nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.CattleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.CattleRecord
	for _, record := range s.records {
		if record.OwnerID == ownerID {
			out = append(out, record.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, record := range s.records {
		counts[record.Status]++
	}
	return counts, nil
}
