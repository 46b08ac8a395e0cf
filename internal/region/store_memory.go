package region

import (
	"context"
	"sync"

	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// InMemoryStore keeps the region -> admin mapping in process memory.
// The mutex serializes assignments so two admins can never race into
// the same region slot.
type InMemoryStore struct {
	mu     sync.RWMutex
	admins map[id.Region]id.UserID
	known  map[id.Region]bool
}

// NewInMemoryStore builds an empty in-memory region store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		admins: make(map[id.Region]id.UserID),
		known:  make(map[id.Region]bool),
	}
}

func (s *InMemoryStore) EnsureRegion(_ context.Context, region id.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[region] = true
	return nil
}

func (s *InMemoryStore) Assign(_ context.Context, region id.Region, adminID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[region] {
		return sentinel.ErrNotFound
	}
	if current, ok := s.admins[region]; ok && current != adminID {
		return sentinel.ErrConflict
	}
	// An admin holds at most one region; check under the same lock so
	// concurrent assigns cannot hand one admin two regions. Postgres
	// enforces this with the unique constraint on admin_id.
	for held, current := range s.admins {
		if current == adminID && held != region {
			return sentinel.ErrConflict
		}
	}
	s.admins[region] = adminID
	return nil
}

func (s *InMemoryStore) Unassign(_ context.Context, region id.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[region] {
		return sentinel.ErrNotFound
	}
	delete(s.admins, region)
	return nil
}

func (s *InMemoryStore) AdminOf(_ context.Context, region id.Region) (id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	adminID, ok := s.admins[region]
	if !ok {
		return id.UserID{}, sentinel.ErrNotFound
	}
	return adminID, nil
}

func (s *InMemoryStore) RegionOf(_ context.Context, adminID id.UserID) (id.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for region, current := range s.admins {
		if current == adminID {
			return region, nil
		}
	}
	return "", sentinel.ErrNotFound
}

func (s *InMemoryStore) ListRegions(_ context.Context) ([]id.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regions := make([]id.Region, 0, len(s.known))
	for region := range s.known {
		regions = append(regions, region)
	}
	return regions, nil
}
