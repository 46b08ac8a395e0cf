// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	actor := requestcontext.Actor(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActor(ctx, actor)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
)

// Session is the authenticated caller extracted once per request from
// the session token. It replaces ambient global session state: every
// operation receives it explicitly through the context, and teardown is
// the natural end of the request.
type Session struct {
	UserID id.UserID
	Role   id.Role
	// Region is set only for regional administrators.
	Region id.Region
}

// IsZero reports whether no authenticated session is present.
func (s Session) IsZero() bool { return s.UserID.IsNil() }

// Context key types (unexported for encapsulation).
type (
	sessionKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeySession     = sessionKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Actor retrieves the authenticated session from the context.
// Returns the zero Session if not set.
func Actor(ctx context.Context) Session {
	if s, ok := ctx.Value(ContextKeySession).(Session); ok {
		return s
	}
	return Session{}
}

// WithActor injects an authenticated session into the context.
func WithActor(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, s)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Workers that need consistent time within a batch operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
