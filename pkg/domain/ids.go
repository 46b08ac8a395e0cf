// Package domain holds shared domain primitives: typed identifiers and
// closed enumerations used across features.
//
// Identifiers are distinct named UUID types so the compiler rejects
// cross-assignment (a UserID can never be passed where a RecordID is
// expected). Construct them via the Parse* functions at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

// UserID identifies a user account (farmer or administrator).
type UserID uuid.UUID

// RecordID identifies a cattle registration record.
type RecordID uuid.UUID

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewRecordID returns a fresh random RecordID.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

// ParseUserID validates external input into a UserID.
// Errors with CodeInvalidInput on empty, malformed, or nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseRecordID validates external input into a RecordID.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RecordID{}, err
	}
	return RecordID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RecordID) String() string { return uuid.UUID(id).String() }
func (id RecordID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// Text marshalling delegates to uuid.UUID so IDs appear as canonical
// UUID strings in JSON payloads and stored trail entries, not as byte
// arrays.

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id RecordID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *RecordID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
