package audit

import (
	"context"
	"log/slog"
)

// Sink publishes events to the downstream stream (Kafka in
// production).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the publisher inbox into the sink. Events are already
// durable in the store by the time they reach the inbox, so delivery
// failures are logged and dropped rather than retried here.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

// NewWorker builds the fan-out worker.
func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit stream publish failed",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}
