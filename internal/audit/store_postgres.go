package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "github.com/geekskaran/cattel/pkg/domain"
)

// PostgresStore persists audit events in PostgreSQL. Each append also
// writes an outbox row so the Kafka worker can publish without losing
// events across restarts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit append: %w", err)
	}
	defer tx.Rollback()

	eventID := uuid.New()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, category, timestamp, actor_id, actor_role, record_id,
			region, action, decision, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		eventID,
		string(event.Category),
		event.Timestamp,
		nullUUID(uuid.UUID(event.Actor)),
		string(event.ActorRole),
		nullUUID(uuid.UUID(event.RecordID)),
		event.Region.String(),
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(),
		"registration",
		eventID,
		event.Action,
		payload,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit append: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRecord(ctx context.Context, recordID id.RecordID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, timestamp, actor_id, actor_role, record_id,
		       region, action, decision, reason, request_id
		FROM audit_events
		WHERE record_id = $1
		ORDER BY timestamp
	`, uuid.UUID(recordID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, timestamp, actor_id, actor_role, record_id,
		       region, action, decision, reason, request_id
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			e        Event
			category string
			role     string
			region   string
			actor    uuid.NullUUID
			record   uuid.NullUUID
		)
		err := rows.Scan(&category, &e.Timestamp, &actor, &role, &record,
			&region, &e.Action, &e.Decision, &e.Reason, &e.RequestID)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = EventCategory(category)
		e.ActorRole = id.Role(role)
		e.Region = id.Region(region)
		if actor.Valid {
			e.Actor = id.UserID(actor.UUID)
		}
		if record.Valid {
			e.RecordID = id.RecordID(record.UUID)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}
