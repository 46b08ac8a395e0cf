package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

type memoryEntry struct {
	recordID    id.RecordID
	submittedAt time.Time
}

// InMemoryIndex keeps the per-region FIFO views in process memory.
// Mutation is serialized per region; reads take the shared lock.
type InMemoryIndex struct {
	mu      sync.RWMutex
	regions map[id.Region][]memoryEntry
}

// NewInMemoryIndex builds an empty index.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{regions: make(map[id.Region][]memoryEntry)}
}

func (x *InMemoryIndex) Enqueue(_ context.Context, region id.Region, recordID id.RecordID, submittedAt time.Time) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	entries := x.regions[region]
	entries = append(entries, memoryEntry{recordID: recordID, submittedAt: submittedAt})
	// Submissions normally arrive in order; the sort keeps the FIFO
	// invariant even when they do not.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].submittedAt.Before(entries[j].submittedAt)
	})
	x.regions[region] = entries
	return nil
}

func (x *InMemoryIndex) Remove(_ context.Context, region id.Region, recordID id.RecordID) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	entries := x.regions[region]
	for i, e := range entries {
		if e.recordID == recordID {
			x.regions[region] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (x *InMemoryIndex) Oldest(_ context.Context, region id.Region) (id.RecordID, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entries := x.regions[region]
	if len(entries) == 0 {
		return id.RecordID{}, sentinel.ErrNotFound
	}
	return entries[0].recordID, nil
}

func (x *InMemoryIndex) Pending(_ context.Context, region id.Region) ([]id.RecordID, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entries := x.regions[region]
	ids := make([]id.RecordID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.recordID)
	}
	return ids, nil
}

func (x *InMemoryIndex) PendingOlderThan(_ context.Context, region id.Region, cutoff time.Time) ([]id.RecordID, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var ids []id.RecordID
	for _, e := range x.regions[region] {
		if e.submittedAt.Before(cutoff) {
			ids = append(ids, e.recordID)
		}
	}
	return ids, nil
}
