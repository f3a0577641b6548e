package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD00000001", formatOrderNumber(1))
	assert.Equal(t, "ORD00000042", formatOrderNumber(42))
	assert.Equal(t, "ORD99999999", formatOrderNumber(99999999))
	// Numbers past the padding width keep growing rather than wrapping.
	assert.Equal(t, "ORD100000000", formatOrderNumber(100000000))
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ID:        1234,
	}

	decoded, err := DecodeCursor(EncodeCursor(cursor))
	require.NoError(t, err)
	assert.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, cursor.ID, decoded.ID)
}

func TestDecodeCursorEmpty(t *testing.T) {
	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	// An empty cursor starts before everything.
	assert.Equal(t, int64(1<<63-1), decoded.ID)
	assert.False(t, decoded.CreatedAt.IsZero())
}

func TestDecodeCursorGarbage(t *testing.T) {
	_, err := DecodeCursor("not-base64!!!")
	assert.Error(t, err)
}
