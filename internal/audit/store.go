package audit

import (
	"context"

	id "github.com/geekskaran/cattel/pkg/domain"
)

// Store persists audit events. Append is the atomic unit of a
// transition: a lifecycle change is committed exactly when its event is
// appended.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRecord(ctx context.Context, recordID id.RecordID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
