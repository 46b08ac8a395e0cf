// Package queue implements the approval queue service: per-region FIFO
// views of pending registrations, ordered by submission time, plus the
// overdue (advisory) escalation flag.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// Index is the ordering structure behind the queue: per region, record
// IDs keyed by submission time, oldest first. Implementations must
// serialize mutation per region; reads may run concurrently.
type Index interface {
	// Enqueue adds a pending record under its region.
	Enqueue(ctx context.Context, region id.Region, recordID id.RecordID, submittedAt time.Time) error

	// Remove drops a record from its region's view. Removing an absent
	// record is a no-op.
	Remove(ctx context.Context, region id.Region, recordID id.RecordID) error

	// Oldest returns the region's oldest pending record without
	// removing it. Fails with sentinel.ErrNotFound on an empty queue.
	Oldest(ctx context.Context, region id.Region) (id.RecordID, error)

	// Pending returns the region's queue in FIFO order.
	Pending(ctx context.Context, region id.Region) ([]id.RecordID, error)

	// PendingOlderThan returns records submitted before the cutoff, in
	// FIFO order.
	PendingOlderThan(ctx context.Context, region id.Region, cutoff time.Time) ([]id.RecordID, error)
}

// RecordGetter is the slice of the record store the queue needs to
// materialize queue entries into records.
type RecordGetter interface {
	Get(ctx context.Context, recordID id.RecordID) (*models.CattleRecord, error)
}

// RegionLister provides the set of regions to scan for overdue records.
type RegionLister interface {
	ListRegions(ctx context.Context) ([]id.Region, error)
	RegionOf(ctx context.Context, adminID id.UserID) (id.Region, error)
}

// OverdueRecord is one escalation entry in the super admin view.
type OverdueRecord struct {
	Record     *models.CattleRecord `json:"record"`
	PendingFor time.Duration        `json:"pending_for"`
}

// Service maintains the per-region ordered views. It never transitions
// a record: approval and decline go through the lifecycle engine, which
// notifies the queue to remove the entry afterwards.
type Service struct {
	index   Index
	records RecordGetter
	regions RegionLister
	window  time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for queue events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the queue service. window is the approval window
// after which pending records are flagged overdue.
func NewService(index Index, records RecordGetter, regions RegionLister, window time.Duration, opts ...Option) *Service {
	s := &Service{
		index:   index,
		records: records,
		regions: regions,
		window:  window,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue indexes a freshly submitted record under its region.
func (s *Service) Enqueue(ctx context.Context, rec *models.CattleRecord) error {
	if rec.Status != models.StatusPending {
		return dErrors.New(dErrors.CodeInvalidInput, "only pending records belong in the approval queue")
	}
	if err := s.index.Enqueue(ctx, rec.Region, rec.ID, rec.SubmittedAt); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue record")
	}
	s.metrics.IncEnqueued(rec.Region.String())
	return nil
}

// Remove drops a record from its region's view once it leaves pending.
func (s *Service) Remove(ctx context.Context, region id.Region, recordID id.RecordID) error {
	if err := s.index.Remove(ctx, region, recordID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove record from queue")
	}
	return nil
}

// DequeueFor returns the oldest pending record in the admin's region
// without removing it; the admin acts via the lifecycle engine.
func (s *Service) DequeueFor(ctx context.Context, adminID id.UserID) (*models.CattleRecord, error) {
	region, err := s.regions.RegionOf(ctx, adminID)
	if err != nil {
		return nil, err
	}
	recordID, err := s.index.Oldest(ctx, region)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no pending registrations in %s", region)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read queue")
	}
	return s.records.Get(ctx, recordID)
}

// ListPending returns the region's queue, oldest first.
func (s *Service) ListPending(ctx context.Context, region id.Region) ([]*models.CattleRecord, error) {
	ids, err := s.index.Pending(ctx, region)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read queue")
	}
	return s.materialize(ctx, ids)
}

// PeekAge reports elapsed time since submission.
func (s *Service) PeekAge(rec *models.CattleRecord, now time.Time) time.Duration {
	return rec.PendingAge(now)
}

// ListOverdue surfaces pending records older than the approval window
// across all regions. The flag is advisory: records stay pending and
// are never auto-transitioned, preserving the manual-approval
// invariant.
func (s *Service) ListOverdue(ctx context.Context, now time.Time) ([]OverdueRecord, error) {
	regions, err := s.regions.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-s.window)

	var overdue []OverdueRecord
	for _, region := range regions {
		ids, err := s.index.PendingOlderThan(ctx, region, cutoff)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan queue")
		}
		for _, recordID := range ids {
			rec, err := s.records.Get(ctx, recordID)
			if err != nil {
				// Queue entries can briefly outlive record visibility;
				// skip rather than fail the whole scan.
				s.logger.WarnContext(ctx, "overdue scan: record missing",
					"record_id", recordID.String(),
					"region", region.String(),
					"error", err,
				)
				continue
			}
			overdue = append(overdue, OverdueRecord{
				Record:     rec,
				PendingFor: rec.PendingAge(now),
			})
		}
		s.metrics.SetOverdue(region.String(), countForRegion(overdue, region))
	}
	return overdue, nil
}

func (s *Service) materialize(ctx context.Context, ids []id.RecordID) ([]*models.CattleRecord, error) {
	records := make([]*models.CattleRecord, 0, len(ids))
	for _, recordID := range ids {
		rec, err := s.records.Get(ctx, recordID)
		if err != nil {
			s.logger.WarnContext(ctx, "queue entry has no record",
				"record_id", recordID.String(),
				"error", err,
			)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func countForRegion(overdue []OverdueRecord, region id.Region) int {
	n := 0
	for _, o := range overdue {
		if o.Record.Region == region {
			n++
		}
	}
	return n
}
