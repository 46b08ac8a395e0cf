package domain

import dErrors "github.com/geekskaran/cattel/pkg/domain-errors"

// ImageCategory is the closed taxonomy of evidence photos attached to a
// registration. The taxonomy is fixed: the per-category minimums and
// the total cap live in the injected policy configuration, not here.
type ImageCategory string

const (
	ImageMuzzle        ImageCategory = "muzzle"
	ImageFace          ImageCategory = "face"
	ImageLeftSide      ImageCategory = "left"
	ImageRightSide     ImageCategory = "right"
	ImageFullBodyLeft  ImageCategory = "full_left"
	ImageFullBodyRight ImageCategory = "full_right"
)

// AllImageCategories returns the taxonomy in its canonical order.
func AllImageCategories() []ImageCategory {
	return []ImageCategory{
		ImageMuzzle,
		ImageFace,
		ImageLeftSide,
		ImageRightSide,
		ImageFullBodyLeft,
		ImageFullBodyRight,
	}
}

var validImageCategories = map[ImageCategory]bool{
	ImageMuzzle:        true,
	ImageFace:          true,
	ImageLeftSide:      true,
	ImageRightSide:     true,
	ImageFullBodyLeft:  true,
	ImageFullBodyRight: true,
}

// ParseImageCategory constructs an ImageCategory from external input.
func ParseImageCategory(s string) (ImageCategory, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "image category cannot be empty")
	}
	c := ImageCategory(s)
	if !validImageCategories[c] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown image category")
	}
	return c, nil
}

// IsValid reports whether the category belongs to the taxonomy.
func (c ImageCategory) IsValid() bool { return validImageCategories[c] }

func (c ImageCategory) String() string { return string(c) }
