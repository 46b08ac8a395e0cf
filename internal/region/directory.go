// Package region implements the region directory: the single authority
// for the one-admin-per-region invariant.
package region

import (
	"context"
	"errors"
	"log/slog"

	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// Directory wraps the store with domain error translation. Assignment
// authorization (super admin only) is checked by the caller via the
// authorization policy; the directory itself only guards the mapping
// invariant.
type Directory struct {
	store  Store
	logger *slog.Logger
}

// Option configures the Directory.
type Option func(*Directory)

// WithLogger sets a logger for assignment events.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) { d.logger = logger }
}

// NewDirectory builds a directory over the given store.
func NewDirectory(store Store, opts ...Option) *Directory {
	d := &Directory{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Seed provisions the bootstrap regions. Existing regions are left
// untouched, so seeding is idempotent.
func (d *Directory) Seed(ctx context.Context, regions []id.Region) error {
	for _, r := range regions {
		if err := d.store.EnsureRegion(ctx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed region")
		}
	}
	return nil
}

// Assign makes adminID the region's active admin. Idempotent when the
// same admin already holds the slot; fails with region_already_assigned
// when a different admin does.
func (d *Directory) Assign(ctx context.Context, region id.Region, adminID id.UserID) error {
	if region.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "region is required")
	}
	if adminID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "admin id is required")
	}

	// An admin may hold at most one region, mirroring the one-admin-
	// per-region invariant from the other side.
	if held, err := d.store.RegionOf(ctx, adminID); err == nil && held != region {
		return dErrors.Newf(dErrors.CodeConflict, "admin already assigned to region %s", held)
	}

	err := d.store.Assign(ctx, region, adminID)
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Newf(dErrors.CodeRegionAssigned, "region %s already has an active admin", region)
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeNotFound, "unknown region %s", region)
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign region admin")
	}

	d.logger.InfoContext(ctx, "region admin assigned",
		"region", region.String(),
		"admin_id", adminID.String(),
	)
	return nil
}

// Unassign clears the region's admin slot.
func (d *Directory) Unassign(ctx context.Context, region id.Region) error {
	err := d.store.Unassign(ctx, region)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeNotFound, "unknown region %s", region)
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to unassign region admin")
	}

	d.logger.InfoContext(ctx, "region admin unassigned", "region", region.String())
	return nil
}

// AdminOf returns the region's current admin, or not_found when the
// slot is unassigned.
func (d *Directory) AdminOf(ctx context.Context, region id.Region) (id.UserID, error) {
	adminID, err := d.store.AdminOf(ctx, region)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return id.UserID{}, dErrors.Newf(dErrors.CodeNotFound, "region %s is unassigned", region)
	case err != nil:
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up region admin")
	}
	return adminID, nil
}

// RegionOf returns the region the admin currently administers.
func (d *Directory) RegionOf(ctx context.Context, adminID id.UserID) (id.Region, error) {
	region, err := d.store.RegionOf(ctx, adminID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return "", dErrors.New(dErrors.CodeNotFound, "admin holds no region")
	case err != nil:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up admin region")
	}
	return region, nil
}

// ListRegions returns all known regions.
func (d *Directory) ListRegions(ctx context.Context) ([]id.Region, error) {
	regions, err := d.store.ListRegions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list regions")
	}
	return regions, nil
}
