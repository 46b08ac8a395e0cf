package registration

import (
	"context"

	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
)

// Store persists cattle records and their transition trails.
// Implementations return sentinel.ErrNotFound for missing records and
// sentinel.ErrConflict when a tag ID is already registered or a
// concurrent update raced past the caller.
type Store interface {
	Create(ctx context.Context, record *models.CattleRecord) error
	Get(ctx context.Context, recordID id.RecordID) (*models.CattleRecord, error)
	// Update replaces the stored record. expectedTrailLen is the trail
	// length the caller read; a mismatch means a concurrent transition
	// won and the update is rejected with sentinel.ErrConflict.
	Update(ctx context.Context, record *models.CattleRecord, expectedTrailLen int) error
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.CattleRecord, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}
