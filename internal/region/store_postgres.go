package region

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// PostgresStore persists the region -> admin mapping in PostgreSQL.
// This store is pure I/O; domain error translation belongs in the
// directory.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed region store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureRegion(ctx context.Context, region id.Region) error {
	query := `
		INSERT INTO regions (name, admin_id)
		VALUES ($1, NULL)
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, region.String()); err != nil {
		return fmt.Errorf("ensure region: %w", err)
	}
	return nil
}

// Assign claims the region slot. The conditional UPDATE makes the claim
// atomic: zero rows updated on a held slot means a different admin owns
// it.
func (s *PostgresStore) Assign(ctx context.Context, region id.Region, adminID id.UserID) error {
	query := `
		UPDATE regions
		SET admin_id = $2
		WHERE name = $1 AND (admin_id IS NULL OR admin_id = $2)
	`
	res, err := s.db.ExecContext(ctx, query, region.String(), uuid.UUID(adminID))
	if err != nil {
		// The unique index on admin_id rejects an admin claiming a
		// second region.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("assign region admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign region admin: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Distinguish "slot held" from "region unknown".
	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM regions WHERE name = $1)`, region.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("assign region admin: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func (s *PostgresStore) Unassign(ctx context.Context, region id.Region) error {
	res, err := s.db.ExecContext(ctx, `UPDATE regions SET admin_id = NULL WHERE name = $1`, region.String())
	if err != nil {
		return fmt.Errorf("unassign region admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unassign region admin: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AdminOf(ctx context.Context, region id.Region) (id.UserID, error) {
	var adminID uuid.NullUUID
	err := s.db.QueryRowContext(ctx, `SELECT admin_id FROM regions WHERE name = $1`, region.String()).Scan(&adminID)
	if err != nil {
		if err == sql.ErrNoRows {
			return id.UserID{}, sentinel.ErrNotFound
		}
		return id.UserID{}, fmt.Errorf("region admin lookup: %w", err)
	}
	if !adminID.Valid {
		return id.UserID{}, sentinel.ErrNotFound
	}
	return id.UserID(adminID.UUID), nil
}

func (s *PostgresStore) RegionOf(ctx context.Context, adminID id.UserID) (id.Region, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM regions WHERE admin_id = $1`, uuid.UUID(adminID)).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("admin region lookup: %w", err)
	}
	return id.Region(name), nil
}

func (s *PostgresStore) ListRegions(ctx context.Context) ([]id.Region, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM regions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var regions []id.Region
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		regions = append(regions, id.Region(name))
	}
	return regions, rows.Err()
}
