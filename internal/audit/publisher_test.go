package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/geekskaran/cattel/pkg/domain"
)

func TestEmitPersistsAndCategorizes(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	ctx := context.Background()

	recordID := id.NewRecordID()
	err := pub.Emit(ctx, Event{
		Actor:    id.NewUserID(),
		RecordID: recordID,
		Region:   "Bihar",
		Action:   string(EventRegistrationApproved),
		Decision: "approved",
	})
	require.NoError(t, err)

	events, err := pub.List(ctx, recordID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, CategoryCompliance, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestEmitFansOutToInbox(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event, 1)
	pub := NewPublisher(store, WithInbox(inbox))

	require.NoError(t, pub.Emit(context.Background(), Event{
		Actor:  id.NewUserID(),
		Action: string(EventSessionCreated),
	}))

	select {
	case event := <-inbox:
		assert.Equal(t, CategoryOperations, event.Category)
	default:
		t.Fatal("expected event on inbox")
	}
}

func TestEmitDoesNotBlockOnFullInbox(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event) // unbuffered, no reader
	pub := NewPublisher(store, WithInbox(inbox))

	// Persists fine even though fan-out is skipped.
	require.NoError(t, pub.Emit(context.Background(), Event{
		Actor:  id.NewUserID(),
		Action: string(EventUserCreated),
	}))

	recent, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
