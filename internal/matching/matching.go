// Package matching defines the hook used to screen new registrations
// against existing herd records before they enter the approval queue.
// The default implementation reports no candidates; a biometric matcher
// (muzzle-print comparison) can be plugged in without touching the
// registration flow.
package matching

import (
	"context"

	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
)

// Candidate is a possible duplicate of a submitted animal. Score is in
// [0, 1]; higher means more alike. Candidates are advisory: the
// registration still lands in the queue and a reviewer decides.
type Candidate struct {
	RecordID id.RecordID
	Score    float64
}

// DuplicateChecker screens a submission's images against known records.
type DuplicateChecker interface {
	CheckDuplicate(ctx context.Context, images []models.ImageRef) ([]Candidate, error)
}

// NoopChecker reports no duplicates. It is the default wiring when no
// matcher service is configured.
type NoopChecker struct{}

func (NoopChecker) CheckDuplicate(context.Context, []models.ImageRef) ([]Candidate, error) {
	return nil, nil
}
