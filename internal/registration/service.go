package registration

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geekskaran/cattel/internal/audit"
	"github.com/geekskaran/cattel/internal/matching"
	"github.com/geekskaran/cattel/internal/policy"
	"github.com/geekskaran/cattel/internal/queue"
	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
	"github.com/geekskaran/cattel/pkg/requestcontext"
)

// RegionChecker confirms a submission names a known region.
type RegionChecker interface {
	ListRegions(ctx context.Context) ([]id.Region, error)
}

// Service orchestrates the registration lifecycle: authorization
// first, then the engine's transition, then persistence, queue upkeep
// and audit. Transitions on the same record are serialized by a
// per-record lock; the store's version check backs that up across
// instances.
type Service struct {
	store      Store
	engine     *Engine
	queue      *queue.Service
	regions    RegionChecker
	duplicates matching.DuplicateChecker
	auditor    *audit.Publisher
	locks      keyedMutex
	logger     *slog.Logger
	metrics    *Metrics
	now        func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(auditor *audit.Publisher) ServiceOption {
	return func(s *Service) { s.auditor = auditor }
}

func WithDuplicateChecker(checker matching.DuplicateChecker) ServiceOption {
	return func(s *Service) { s.duplicates = checker }
}

func withClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, engine *Engine, q *queue.Service, regions RegionChecker, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		engine:     engine,
		queue:      q,
		regions:    regions,
		duplicates: matching.NoopChecker{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitRequest is a farmer's registration submission.
type SubmitRequest struct {
	TagID  string
	Region string
	Images []models.ImageRef
}

// SubmitResult carries the created record plus any duplicate
// candidates the matcher flagged. Candidates are advisory; the record
// is queued regardless.
type SubmitResult struct {
	Record     *models.CattleRecord
	Duplicates []matching.Candidate
}

// Submit validates and creates a registration, enqueues it for its
// region's reviewer, and emits the submission audit event.
func (s *Service) Submit(ctx context.Context, actor policy.Actor, req SubmitRequest) (*SubmitResult, error) {
	region, err := s.knownRegion(ctx, req.Region)
	if err != nil {
		s.metrics.ObserveSubmission(req.Region, "rejected")
		return nil, err
	}

	rec, err := s.engine.NewRecord(Submission{
		TagID:   req.TagID,
		OwnerID: actor.ID,
		Region:  region,
		Images:  req.Images,
		At:      s.now(),
	})
	if err != nil {
		s.metrics.ObserveSubmission(region.String(), "rejected")
		return nil, err
	}

	if err := policy.CanPerform(actor, models.ActionSubmit, rec); err != nil {
		s.deny(ctx, actor, models.ActionSubmit, rec.ID)
		return nil, err
	}

	candidates, err := s.duplicates.CheckDuplicate(ctx, rec.Images)
	if err != nil {
		// The matcher is advisory; a failure must not block intake.
		s.logger.WarnContext(ctx, "duplicate check failed",
			"record_id", rec.ID.String(),
			"error", err,
		)
		candidates = nil
	}

	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.ObserveSubmission(region.String(), "rejected")
			return nil, dErrors.Newf(dErrors.CodeConflict, "cattle id %s is already registered", rec.TagID)
		}
		return nil, s.internal(ctx, err, "create record")
	}
	if err := s.queue.Enqueue(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "enqueue failed, record stays pending outside queue index",
			"record_id", rec.ID.String(),
			"error", err,
		)
	}

	s.metrics.ObserveSubmission(region.String(), "accepted")
	if err := s.emit(ctx, rec, actor, audit.EventRegistrationSubmitted, ""); err != nil {
		return nil, err
	}
	return &SubmitResult{Record: rec, Duplicates: candidates}, nil
}

// TransitionRequestInput names the caller-supplied parts of a
// lifecycle transition.
type TransitionRequestInput struct {
	Reason     string
	Transferee id.UserID
}

// Approve moves a pending record to approved.
func (s *Service) Approve(ctx context.Context, actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
	return s.apply(ctx, actor, recordID, models.ActionApprove, TransitionRequestInput{})
}

// Decline moves a pending record to declined. Reason is mandatory.
func (s *Service) Decline(ctx context.Context, actor policy.Actor, recordID id.RecordID, reason string) (*models.CattleRecord, error) {
	return s.apply(ctx, actor, recordID, models.ActionDecline, TransitionRequestInput{Reason: reason})
}

// Archive retires an approved or declined record.
func (s *Service) Archive(ctx context.Context, actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
	return s.apply(ctx, actor, recordID, models.ActionArchive, TransitionRequestInput{})
}

// InitiateTransfer puts an approved record in transit to a new owner.
func (s *Service) InitiateTransfer(ctx context.Context, actor policy.Actor, recordID id.RecordID, transferee id.UserID) (*models.CattleRecord, error) {
	return s.apply(ctx, actor, recordID, models.ActionInitiateTransfer, TransitionRequestInput{Transferee: transferee})
}

// CompleteTransfer hands ownership to the transferee and returns the
// record to approved.
func (s *Service) CompleteTransfer(ctx context.Context, actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
	return s.apply(ctx, actor, recordID, models.ActionCompleteTransfer, TransitionRequestInput{})
}

// CancelTransfer abandons an in-transit handover; the current owner
// keeps the record.
func (s *Service) CancelTransfer(ctx context.Context, actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
	return s.apply(ctx, actor, recordID, models.ActionCancelTransfer, TransitionRequestInput{})
}

// Get returns a record to a caller the policy allows to see it.
func (s *Service) Get(ctx context.Context, actor policy.Actor, recordID id.RecordID) (*models.CattleRecord, error) {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPerform(actor, models.ActionView, rec); err != nil {
		s.deny(ctx, actor, models.ActionView, recordID)
		return nil, err
	}
	return rec, nil
}

// ListMine returns the actor's own records, oldest first.
func (s *Service) ListMine(ctx context.Context, actor policy.Actor) ([]*models.CattleRecord, error) {
	records, err := s.store.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, s.internal(ctx, err, "list records")
	}
	return records, nil
}

// Trail returns a record's transition history under the same
// visibility rule as Get.
func (s *Service) Trail(ctx context.Context, actor policy.Actor, recordID id.RecordID) ([]models.TransitionEntry, error) {
	rec, err := s.Get(ctx, actor, recordID)
	if err != nil {
		return nil, err
	}
	return rec.Trail, nil
}

// apply runs one transition end to end: lock, load, authorize,
// transition, persist, queue upkeep, audit.
func (s *Service) apply(ctx context.Context, actor policy.Actor, recordID id.RecordID, action models.Action, input TransitionRequestInput) (*models.CattleRecord, error) {
	unlock := s.locks.lock(recordID)
	defer unlock()

	rec, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanPerform(actor, action, rec); err != nil {
		s.deny(ctx, actor, action, recordID)
		return nil, err
	}

	expectedTrailLen := len(rec.Trail)
	wasPending := rec.Status == models.StatusPending

	err = s.engine.Transition(rec, TransitionRequest{
		Action:     action,
		Actor:      actor.ID,
		At:         s.now(),
		Reason:     input.Reason,
		Transferee: input.Transferee,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, rec, expectedTrailLen); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "record was modified concurrently, retry")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return nil, s.internal(ctx, err, "update record")
	}

	if wasPending && rec.Status != models.StatusPending {
		if err := s.queue.Remove(ctx, rec.Region, rec.ID); err != nil {
			s.logger.WarnContext(ctx, "queue removal failed",
				"record_id", rec.ID.String(),
				"error", err,
			)
		}
	}

	s.metrics.ObserveTransition(action.String())
	if err := s.emit(ctx, rec, actor, auditEventFor(action), input.Reason); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) load(ctx context.Context, recordID id.RecordID) (*models.CattleRecord, error) {
	rec, err := s.store.Get(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return nil, s.internal(ctx, err, "load record")
	}
	return rec, nil
}

func (s *Service) knownRegion(ctx context.Context, raw string) (id.Region, error) {
	region, err := id.ParseRegion(raw)
	if err != nil {
		return "", err
	}
	known, err := s.regions.ListRegions(ctx)
	if err != nil {
		return "", s.internal(ctx, err, "list regions")
	}
	for _, candidate := range known {
		if candidate == region {
			return region, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown region %q", raw)
}

// emit records the compliance event for a successful lifecycle change.
// Audit is fail-closed: if the event cannot be persisted the operation
// reports failure even though the state change stuck.
func (s *Service) emit(ctx context.Context, rec *models.CattleRecord, actor policy.Actor, event audit.AuditEvent, reason string) error {
	if s.auditor == nil {
		return nil
	}
	return s.auditor.Emit(ctx, audit.Event{
		Actor:     actor.ID,
		ActorRole: actor.Role,
		RecordID:  rec.ID,
		Region:    rec.Region,
		Action:    string(event),
		Decision:  rec.Status.String(),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
}

func (s *Service) deny(ctx context.Context, actor policy.Actor, action models.Action, recordID id.RecordID) {
	s.metrics.ObserveDenied(action.String())
	s.logger.WarnContext(ctx, "action denied",
		"actor", actor.ID.String(),
		"role", actor.Role.String(),
		"action", action.String(),
		"record_id", recordID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditor != nil {
		_ = s.auditor.Emit(ctx, audit.Event{
			Actor:     actor.ID,
			ActorRole: actor.Role,
			RecordID:  recordID,
			Region:    actor.Region,
			Action:    string(audit.EventActionDenied),
			Decision:  "denied",
			Reason:    action.String(),
			RequestID: requestcontext.RequestID(ctx),
		})
	}
}

func (s *Service) internal(ctx context.Context, err error, op string) error {
	s.logger.ErrorContext(ctx, op+" failed",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, op)
}

func auditEventFor(action models.Action) audit.AuditEvent {
	switch action {
	case models.ActionApprove:
		return audit.EventRegistrationApproved
	case models.ActionDecline:
		return audit.EventRegistrationDeclined
	case models.ActionArchive:
		return audit.EventRegistrationArchived
	case models.ActionInitiateTransfer:
		return audit.EventTransferInitiated
	case models.ActionCompleteTransfer:
		return audit.EventTransferCompleted
	case models.ActionCancelTransfer:
		return audit.EventTransferCancelled
	default:
		return audit.EventRegistrationSubmitted
	}
}

// keyedMutex serializes transitions per record without a global lock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[id.RecordID]*recordLock
}

type recordLock struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(recordID id.RecordID) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[id.RecordID]*recordLock)
	}
	l, ok := k.locks[recordID]
	if !ok {
		l = &recordLock{}
		k.locks[recordID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, recordID)
		}
		k.mu.Unlock()
	}
}
