package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// PostgresStore persists cattle records. Images and the transition
// trail are stored as jsonb; a version column equal to the trail length
// backs optimistic concurrency on updates.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, record *models.CattleRecord) error {
	images, trail, err := marshalRecord(record)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO cattle_records
			(id, tag_id, owner_id, region, images, status, transferee, submitted_at, trail, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = s.db.ExecContext(ctx, query,
		record.ID.String(), record.TagID, record.OwnerID.String(), record.Region.String(),
		images, record.Status.String(), nullUserID(record.Transferee),
		record.SubmittedAt, trail, len(record.Trail),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert cattle record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, recordID id.RecordID) (*models.CattleRecord, error) {
	const query = `
		SELECT id, tag_id, owner_id, region, images, status, transferee, submitted_at, trail
		FROM cattle_records WHERE id = $1`
	rows, err := s.db.QueryContext(ctx, query, recordID.String())
	if err != nil {
		return nil, fmt.Errorf("select cattle record: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return records[0], nil
}

func (s *PostgresStore) Update(ctx context.Context, record *models.CattleRecord, expectedTrailLen int) error {
	images, trail, err := marshalRecord(record)
	if err != nil {
		return err
	}
	const query = `
		UPDATE cattle_records
		SET owner_id = $2, images = $3, status = $4, transferee = $5, trail = $6, version = $7
		WHERE id = $1 AND version = $8`
	result, err := s.db.ExecContext(ctx, query,
		record.ID.String(), record.OwnerID.String(), images, record.Status.String(),
		nullUserID(record.Transferee), trail, len(record.Trail), expectedTrailLen,
	)
	if err != nil {
		return fmt.Errorf("update cattle record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cattle record: %w", err)
	}
	if affected == 0 {
		// Either the record is missing or a concurrent transition
		// bumped the version first.
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM cattle_records WHERE id = $1)`,
			record.ID.String()).Scan(&exists)
		if err != nil {
			return fmt.Errorf("update cattle record: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.CattleRecord, error) {
	const query = `
		SELECT id, tag_id, owner_id, region, images, status, transferee, submitted_at, trail
		FROM cattle_records WHERE owner_id = $1 ORDER BY submitted_at`
	rows, err := s.db.QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list cattle records: %w", err)
	}
	return scanRecords(rows)
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM cattle_records GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count cattle records: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var (
			rawStatus string
			count     int
		)
		if err := rows.Scan(&rawStatus, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		status, err := models.ParseStatus(rawStatus)
		if err != nil {
			return nil, fmt.Errorf("stored status: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func marshalRecord(record *models.CattleRecord) (images, trail []byte, err error) {
	if images, err = json.Marshal(record.Images); err != nil {
		return nil, nil, fmt.Errorf("marshal images: %w", err)
	}
	if trail, err = json.Marshal(record.Trail); err != nil {
		return nil, nil, fmt.Errorf("marshal trail: %w", err)
	}
	return images, trail, nil
}

func scanRecords(rows *sql.Rows) ([]*models.CattleRecord, error) {
	defer rows.Close()
	var out []*models.CattleRecord
	for rows.Next() {
		var (
			record     models.CattleRecord
			rawID      string
			rawOwner   string
			rawRegion  string
			rawStatus  string
			transferee sql.NullString
			images     []byte
			trail      []byte
		)
		err := rows.Scan(&rawID, &record.TagID, &rawOwner, &rawRegion,
			&images, &rawStatus, &transferee, &record.SubmittedAt, &trail)
		if err != nil {
			return nil, fmt.Errorf("scan cattle record: %w", err)
		}
		if record.ID, err = id.ParseRecordID(rawID); err != nil {
			return nil, fmt.Errorf("stored record id: %w", err)
		}
		if record.OwnerID, err = id.ParseUserID(rawOwner); err != nil {
			return nil, fmt.Errorf("stored owner id: %w", err)
		}
		record.Region = id.Region(rawRegion)
		status, err := models.ParseStatus(rawStatus)
		if err != nil {
			return nil, fmt.Errorf("stored status: %w", err)
		}
		record.Status = status
		if transferee.Valid {
			if record.Transferee, err = id.ParseUserID(transferee.String); err != nil {
				return nil, fmt.Errorf("stored transferee: %w", err)
			}
		}
		if err := json.Unmarshal(images, &record.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
		if err := json.Unmarshal(trail, &record.Trail); err != nil {
			return nil, fmt.Errorf("unmarshal trail: %w", err)
		}
		out = append(out, &record)
	}
	return out, rows.Err()
}

func nullUserID(userID id.UserID) sql.NullString {
	if userID.IsNil() {
		return sql.NullString{}
	}
	return sql.NullString{String: userID.String(), Valid: true}
}
