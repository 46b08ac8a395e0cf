package domain

import (
	"strings"

	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

// Region names an administrative partition. Each region has at most
// one active regional administrator, enforced by the region directory.
type Region string

// SeedRegions are the regions provisioned on first start. The directory
// accepts additional regions at runtime; this list only bootstraps
// empty installations.
func SeedRegions() []Region {
	return []Region{
		"Bihar",
		"Uttar Pradesh",
		"Maharashtra",
		"Gujarat",
		"Rajasthan",
		"Punjab",
	}
}

// ParseRegion normalizes and validates a region name from external
// input. Region names are free-form but must be non-empty after
// trimming.
func ParseRegion(s string) (Region, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "region cannot be empty")
	}
	return Region(name), nil
}

func (r Region) String() string { return string(r) }
func (r Region) IsZero() bool   { return r == "" }
