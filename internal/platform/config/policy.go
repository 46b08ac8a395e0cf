package config

import (
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
)

// Policy is the immutable registration policy contract. A single value
// is constructed at startup and injected into the validation rules, the
// lifecycle engine, and the approval queue so the manual-approval and
// image-completeness invariants stay centrally auditable.
//
// These constants are part of the external contract and must not be
// changed silently: per-category image minimums summing to the 14-image
// cap, the 48-hour approval window, and the identity field patterns.
type Policy struct {
	// ImageMinimums maps each required category to its minimum count.
	// Every category must be present; none may be skipped.
	ImageMinimums map[id.ImageCategory]int

	// MaxImagesPerRecord is the hard cap on total images per record.
	MaxImagesPerRecord int

	// ApprovalWindow is the maximum time a record may sit pending
	// before it is flagged overdue. Overdue is advisory only; no
	// timeout path ever transitions a record.
	ApprovalWindow time.Duration

	// MaxImageSizeBytes bounds a single uploaded image.
	MaxImageSizeBytes int64

	// AllowedImageTypes lists acceptable image content types.
	AllowedImageTypes []string
}

// DefaultPolicy returns the fixed registration policy.
func DefaultPolicy() Policy {
	return Policy{
		ImageMinimums: map[id.ImageCategory]int{
			id.ImageMuzzle:        3,
			id.ImageFace:          3,
			id.ImageLeftSide:      3,
			id.ImageRightSide:     3,
			id.ImageFullBodyLeft:  1,
			id.ImageFullBodyRight: 1,
		},
		MaxImagesPerRecord: 14,
		ApprovalWindow:     48 * time.Hour,
		MaxImageSizeBytes:  5 << 20,
		AllowedImageTypes:  []string{"image/jpeg", "image/jpg", "image/png"},
	}
}
