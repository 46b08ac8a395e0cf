package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// PostgresUserStore persists user accounts in the users table.
// Uniqueness of mobile and email is enforced by database constraints.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user User) error {
	const query = `
		INSERT INTO users (id, name, mobile, email, password_hash, role, region, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`
	_, err := s.db.ExecContext(ctx, query,
		user.ID.String(), user.Name, user.Mobile, user.Email,
		user.PasswordHash, user.Role.String(), user.Region.String(), user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (User, error) {
	const query = `
		SELECT id, name, mobile, email, password_hash, role, COALESCE(region, ''), created_at
		FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, userID.String()))
}

func (s *PostgresUserStore) FindByMobile(ctx context.Context, mobile string) (User, error) {
	const query = `
		SELECT id, name, mobile, email, password_hash, role, COALESCE(region, ''), created_at
		FROM users WHERE mobile = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, mobile))
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (User, error) {
	var (
		user      User
		rawID     string
		rawRole   string
		rawRegion string
	)
	err := row.Scan(&rawID, &user.Name, &user.Mobile, &user.Email,
		&user.PasswordHash, &rawRole, &rawRegion, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	if user.ID, err = id.ParseUserID(rawID); err != nil {
		return User{}, fmt.Errorf("stored user id: %w", err)
	}
	if user.Role, err = id.ParseRole(rawRole); err != nil {
		return User{}, fmt.Errorf("stored user role: %w", err)
	}
	user.Region = id.Region(rawRegion)
	return user, nil
}
