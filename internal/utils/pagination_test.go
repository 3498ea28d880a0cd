package utils_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bergerie-server/internal/utils"
)

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793, time.UTC)

	cursor := utils.EncodeCursor(at, id)
	require.NotEmpty(t, cursor)

	decodedTime, decodedID, err := utils.DecodeCursor(cursor)
	require.NoError(t, err)
	assert.True(t, at.Equal(decodedTime))
	assert.Equal(t, id, decodedID)
}

func TestEncodeCursor_ZeroValues(t *testing.T) {
	assert.Empty(t, utils.EncodeCursor(time.Time{}, uuid.New()))
	assert.Empty(t, utils.EncodeCursor(time.Now(), uuid.Nil))
}

func TestDecodeCursor_EmptyMeansStart(t *testing.T) {
	decodedTime, decodedID, err := utils.DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, decodedTime.IsZero())
	assert.Equal(t, uuid.Nil, decodedID)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%"},
		{"missing separator", "MTIzNDU2Nzg5"}, // "123456789"
		{"bad timestamp", "YWJjXzEyMw=="},     // "abc_123"
		{"bad uuid", "MTIzX25vdC1hLXV1aWQ="},  // "123_not-a-uuid"
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := utils.DecodeCursor(tc.cursor)
			assert.Error(t, err)
		})
	}
}
