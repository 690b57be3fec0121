package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "downline/pkg/domain-errors"
)

func TestParseMemberID(t *testing.T) {
	t.Run("valid UUID", func(t *testing.T) {
		raw := uuid.NewString()
		parsed, err := ParseMemberID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, parsed.String())
	})

	t.Run("empty string rejected", func(t *testing.T) {
		_, err := ParseMemberID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("malformed rejected", func(t *testing.T) {
		_, err := ParseMemberID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("nil UUID rejected", func(t *testing.T) {
		_, err := ParseMemberID(uuid.Nil.String())
		require.Error(t, err)
	})
}

func TestMemberIDJSON(t *testing.T) {
	memberID := NewMemberID()

	raw, err := json.Marshal(memberID)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+memberID.String()+`"`, string(raw))

	var decoded MemberID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, memberID, decoded)
}

func TestMemberIDIsNil(t *testing.T) {
	assert.True(t, MemberID{}.IsNil())
	assert.False(t, NewMemberID().IsNil())
}

func TestParseNotificationID(t *testing.T) {
	raw := uuid.NewString()
	parsed, err := ParseNotificationID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, parsed.String())

	_, err = ParseNotificationID("nope")
	assert.Error(t, err)
}
