package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

func TestParseUserID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, input := range []string{"not-a-uuid", "1234", "550e8400-e29b-41d4-a716"} {
			_, err := ParseUserID(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseUserID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(valid), id)
		assert.Equal(t, valid.String(), id.String())
	})
}

func TestParseRecordID(t *testing.T) {
	t.Run("rejects empty and nil", func(t *testing.T) {
		_, err := ParseRecordID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = ParseRecordID(uuid.Nil.String())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("round-trips through String", func(t *testing.T) {
		id := NewRecordID()
		parsed, err := ParseRecordID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})
}

func TestIDJSONEncoding(t *testing.T) {
	t.Run("marshals as a UUID string", func(t *testing.T) {
		userID := NewUserID()
		out, err := json.Marshal(userID)
		require.NoError(t, err)
		assert.Equal(t, `"`+userID.String()+`"`, string(out))
	})

	t.Run("round-trips through a struct field", func(t *testing.T) {
		type payload struct {
			Record RecordID `json:"record_id"`
		}
		in := payload{Record: NewRecordID()}
		raw, err := json.Marshal(in)
		require.NoError(t, err)

		var out payload
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, in.Record, out.Record)
	})
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.True(t, RecordID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
	assert.False(t, NewRecordID().IsNil())
}
