package region

import (
	"context"

	id "github.com/geekskaran/cattel/pkg/domain"
)

// Store persists the region -> admin mapping. It is a mapping, not a
// multimap: at most one admin per region at any time. Implementations
// return sentinel errors; the directory translates them into domain
// errors.
type Store interface {
	// EnsureRegion creates the region slot if it does not exist.
	EnsureRegion(ctx context.Context, region id.Region) error

	// Assign sets the region's admin. Fails with sentinel.ErrConflict
	// when a different admin already holds the slot or the admin
	// already holds another region; assigning the same admin again
	// succeeds. Fails with sentinel.ErrNotFound for an unknown region.
	// Both conflict checks happen atomically with the write.
	Assign(ctx context.Context, region id.Region, adminID id.UserID) error

	// Unassign clears the region's admin slot.
	Unassign(ctx context.Context, region id.Region) error

	// AdminOf returns the region's current admin. Fails with
	// sentinel.ErrNotFound when the region is unknown or unassigned.
	AdminOf(ctx context.Context, region id.Region) (id.UserID, error)

	// RegionOf is the reverse lookup: the region an admin is assigned
	// to. Fails with sentinel.ErrNotFound when the admin holds no
	// region.
	RegionOf(ctx context.Context, adminID id.UserID) (id.Region, error)

	// ListRegions returns all known regions.
	ListRegions(ctx context.Context) ([]id.Region, error)
}
