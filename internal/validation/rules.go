// Package validation implements the stateless identity-field and
// image-set predicates. Each predicate is deterministic, side-effect
// free, and fails with a specific reason code so callers can surface
// the exact field and cause to the submitter.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/geekskaran/cattel/internal/platform/config"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

// Reason identifies why a predicate failed.
type Reason string

const (
	ReasonMobileFormat       Reason = "mobile_format"
	ReasonEmailFormat        Reason = "email_format"
	ReasonPasswordTooShort   Reason = "password_too_short"
	ReasonPasswordWeak       Reason = "password_weak"
	ReasonCattleIDFormat     Reason = "cattle_id_format"
	ReasonIncompleteImageSet Reason = "incomplete_image_set"
	ReasonImageLimitExceeded Reason = "image_limit_exceeded"
	ReasonImageTooLarge      Reason = "image_too_large"
	ReasonImageTypeInvalid   Reason = "image_type_invalid"
	ReasonUnknownCategory    Reason = "unknown_image_category"
)

// FieldError reports one failed predicate. It wraps into a coded
// validation error so transports map it to a 400 with the field and
// reason intact.
type FieldError struct {
	Field  string
	Reason Reason
	Detail string
}

func (e *FieldError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Field, e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ReasonOf extracts the failure reason from a validation error, or ""
// when err is not a field error.
func ReasonOf(err error) Reason {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ""
}

func fail(field string, reason Reason, detail string) error {
	return dErrors.Wrap(&FieldError{Field: field, Reason: reason, Detail: detail}, dErrors.CodeValidation, string(reason))
}

var (
	mobilePattern   = regexp.MustCompile(`^[0-9]{10,15}$`)
	cattleIDPattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Rules bundles the predicates with the injected policy so the image
// taxonomy and cap live in exactly one place.
type Rules struct {
	policy config.Policy
}

// New builds the rule set for the given policy.
func New(policy config.Policy) *Rules {
	return &Rules{policy: policy}
}

// Mobile requires 10 to 15 digits, numeric only.
func (r *Rules) Mobile(mobile string) error {
	if !mobilePattern.MatchString(mobile) {
		return fail("mobile", ReasonMobileFormat, "must be 10-15 digits")
	}
	return nil
}

// Email requires a single @ with non-whitespace local and domain parts.
func (r *Rules) Email(email string) error {
	if !emailPattern.MatchString(email) {
		return fail("email", ReasonEmailFormat, "must be a valid email address")
	}
	return nil
}

// Password requires at least 8 characters with one lowercase letter,
// one uppercase letter, and one digit.
func (r *Rules) Password(password string) error {
	if len(password) < 8 {
		return fail("password", ReasonPasswordTooShort, "must be at least 8 characters")
	}
	var hasLower, hasUpper, hasDigit bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return fail("password", ReasonPasswordWeak, "must contain a lowercase letter, an uppercase letter, and a digit")
	}
	return nil
}

// CattleID requires 6 to 12 uppercase letters and digits.
func (r *Rules) CattleID(cattleID string) error {
	if !cattleIDPattern.MatchString(cattleID) {
		return fail("cattle_id", ReasonCattleIDFormat, "must be 6-12 uppercase letters and digits")
	}
	return nil
}

// ImageSet checks completeness of a candidate (category, count) set.
// It fails with incomplete_image_set when any required category is
// under its minimum and with image_limit_exceeded when the total count
// exceeds the cap. No category may be skipped.
func (r *Rules) ImageSet(counts map[id.ImageCategory]int) error {
	total := 0
	for category, count := range counts {
		if !category.IsValid() {
			return fail("images", ReasonUnknownCategory, category.String())
		}
		total += count
	}
	if total > r.policy.MaxImagesPerRecord {
		return fail("images", ReasonImageLimitExceeded,
			fmt.Sprintf("at most %d images per record", r.policy.MaxImagesPerRecord))
	}
	for category, minimum := range r.policy.ImageMinimums {
		if counts[category] < minimum {
			return fail("images", ReasonIncompleteImageSet,
				fmt.Sprintf("%s requires at least %d images", category, minimum))
		}
	}
	return nil
}

// ImageMeta checks a single image's size and content type against the
// upload constraints.
func (r *Rules) ImageMeta(contentType string, sizeBytes int64) error {
	if sizeBytes > r.policy.MaxImageSizeBytes {
		return fail("images", ReasonImageTooLarge,
			fmt.Sprintf("at most %d bytes per image", r.policy.MaxImageSizeBytes))
	}
	for _, allowed := range r.policy.AllowedImageTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fail("images", ReasonImageTypeInvalid, contentType)
}
