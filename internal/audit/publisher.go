package audit

import (
	"context"
	"log/slog"
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

// Publisher captures structured audit events. Persistence is
// fail-closed: Emit returns an error when the store append fails, and
// the calling operation must fail with it — a transition without its
// audit entry never commits. Kafka fan-out is best-effort and runs on
// the worker, off the request path.
type Publisher struct {
	store  Store
	inbox  chan<- Event
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for fan-out problems.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithInbox attaches the worker channel for Kafka fan-out. Without an
// inbox events persist to the store only.
func WithInbox(inbox chan<- Event) Option {
	return func(p *Publisher) { p.inbox = inbox }
}

// NewPublisher builds a publisher over the given store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit persists one audit event. The event's category is derived from
// its action; the timestamp defaults to now.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}

	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit persistence failed",
			"action", event.Action,
			"record_id", event.RecordID.String(),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit persistence failed")
	}

	if p.inbox != nil {
		select {
		case p.inbox <- event:
		default:
			// A full inbox must not block the request path; the event
			// is already durable in the store.
			p.logger.WarnContext(ctx, "audit inbox full, skipping stream fan-out",
				"action", event.Action,
			)
		}
	}
	return nil
}

// List returns the audit events recorded for a record.
func (p *Publisher) List(ctx context.Context, recordID id.RecordID) ([]Event, error) {
	return p.store.ListByRecord(ctx, recordID)
}
