package auth

import (
	"context"
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
)

// UserStore persists user accounts. Implementations return
// sentinel.ErrNotFound for missing users and sentinel.ErrConflict when
// a mobile number or email is already taken.
type UserStore interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, userID id.UserID) (User, error)
	FindByMobile(ctx context.Context, mobile string) (User, error)
}

// RevocationList records logged-out token IDs until the token would
// have expired on its own.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}
