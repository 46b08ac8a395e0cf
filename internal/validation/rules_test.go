package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekskaran/cattel/internal/platform/config"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

func newRules() *Rules {
	return New(config.DefaultPolicy())
}

func TestMobile(t *testing.T) {
	r := newRules()

	tests := []struct {
		name   string
		mobile string
		wantOK bool
	}{
		{"ten digits", "9876543210", true},
		{"fifteen digits", "987654321098765", true},
		{"nine digits", "987654321", false},
		{"sixteen digits", "9876543210987654", false},
		{"letters", "98765abcde", false},
		{"plus prefix", "+919876543210", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Mobile(tt.mobile)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				assert.Equal(t, ReasonMobileFormat, ReasonOf(err))
			}
		})
	}
}

func TestEmail(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.Email("farmer@example.com"))
	assert.NoError(t, r.Email("a.b+c@sub.example.in"))

	for _, bad := range []string{"", "no-at-sign", "two@@example.com", "spaces in@example.com", "@example.com", "user@", "user@domain"} {
		err := r.Email(bad)
		require.Error(t, err, "email %q", bad)
		assert.Equal(t, ReasonEmailFormat, ReasonOf(err))
	}
}

func TestPassword(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.Password("Secret12"))
	assert.NoError(t, r.Password("aB3defghij"))

	err := r.Password("aB3defg")
	require.Error(t, err)
	assert.Equal(t, ReasonPasswordTooShort, ReasonOf(err))

	for _, weak := range []string{"alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		err := r.Password(weak)
		require.Error(t, err, "password %q", weak)
		assert.Equal(t, ReasonPasswordWeak, ReasonOf(err))
	}
}

func TestCattleID(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.CattleID("AB1234"))
	assert.NoError(t, r.CattleID("ABCDEF123456"))

	for _, bad := range []string{"", "AB123", "ABCDEF1234567", "ab1234", "AB-1234"} {
		err := r.CattleID(bad)
		require.Error(t, err, "cattle id %q", bad)
		assert.Equal(t, ReasonCattleIDFormat, ReasonOf(err))
	}
}

// completeImageSet returns the exact taxonomy minimums: 14 images total.
func completeImageSet() map[id.ImageCategory]int {
	return map[id.ImageCategory]int{
		id.ImageMuzzle:        3,
		id.ImageFace:          3,
		id.ImageLeftSide:      3,
		id.ImageRightSide:     3,
		id.ImageFullBodyLeft:  1,
		id.ImageFullBodyRight: 1,
	}
}

func TestImageSet_ExactMinimumsPass(t *testing.T) {
	r := newRules()
	assert.NoError(t, r.ImageSet(completeImageSet()))
}

func TestImageSet_RemovingAnyImageFailsIncomplete(t *testing.T) {
	r := newRules()

	for _, category := range id.AllImageCategories() {
		t.Run(category.String(), func(t *testing.T) {
			counts := completeImageSet()
			counts[category]--
			err := r.ImageSet(counts)
			require.Error(t, err)
			assert.Equal(t, ReasonIncompleteImageSet, ReasonOf(err))
		})
	}
}

func TestImageSet_FifteenthImageFailsLimit(t *testing.T) {
	r := newRules()

	// Adding one extra image of any category pushes the total past the
	// cap; the limit check fires before minimums.
	for _, category := range id.AllImageCategories() {
		t.Run(category.String(), func(t *testing.T) {
			counts := completeImageSet()
			counts[category]++
			err := r.ImageSet(counts)
			require.Error(t, err)
			assert.Equal(t, ReasonImageLimitExceeded, ReasonOf(err))
		})
	}
}

func TestImageSet_MissingCategoryFails(t *testing.T) {
	r := newRules()

	counts := completeImageSet()
	delete(counts, id.ImageFullBodyRight)
	err := r.ImageSet(counts)
	require.Error(t, err)
	assert.Equal(t, ReasonIncompleteImageSet, ReasonOf(err))
}

func TestImageSet_UnknownCategoryFails(t *testing.T) {
	r := newRules()

	counts := completeImageSet()
	// Swap one required image for an unknown category: rejected outright.
	counts[id.ImageCategory("tail")] = 1
	counts[id.ImageMuzzle]--
	err := r.ImageSet(counts)
	require.Error(t, err)
	assert.Equal(t, ReasonUnknownCategory, ReasonOf(err))
}

func TestImageMeta(t *testing.T) {
	r := newRules()

	assert.NoError(t, r.ImageMeta("image/jpeg", 1<<20))
	assert.NoError(t, r.ImageMeta("image/png", 5<<20))

	err := r.ImageMeta("image/jpeg", 5<<20+1)
	require.Error(t, err)
	assert.Equal(t, ReasonImageTooLarge, ReasonOf(err))

	err = r.ImageMeta("image/gif", 100)
	require.Error(t, err)
	assert.Equal(t, ReasonImageTypeInvalid, ReasonOf(err))
}
