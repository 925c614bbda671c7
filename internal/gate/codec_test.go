package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSizeValidation(t *testing.T) {
	var req registerRequest
	payload := encode(&registerRequest{})

	t.Run("exact size accepted", func(t *testing.T) {
		assert.NoError(t, decode(payload, &req))
	})

	t.Run("truncated rejected", func(t *testing.T) {
		assert.ErrorIs(t, decode(payload[:len(payload)-1], &req), ErrBadPayload)
	})

	t.Run("oversized rejected", func(t *testing.T) {
		assert.ErrorIs(t, decode(append(payload, 0), &req), ErrBadPayload)
	})

	t.Run("empty rejected", func(t *testing.T) {
		assert.ErrorIs(t, decode(nil, &req), ErrBadPayload)
	})
}

func TestCStringRoundTrip(t *testing.T) {
	var field [32]byte

	putCString(field[:], "net-monitor")
	assert.Equal(t, "net-monitor", cstring(field[:]))

	t.Run("overlong input truncated with terminator", func(t *testing.T) {
		putCString(field[:], strings.Repeat("x", 64))
		result := cstring(field[:])
		assert.Len(t, result, 31)
	})

	t.Run("reuse clears stale bytes", func(t *testing.T) {
		putCString(field[:], strings.Repeat("y", 20))
		putCString(field[:], "ab")
		assert.Equal(t, "ab", cstring(field[:]))
	})
}

func TestStatusFrameHasFixedSize(t *testing.T) {
	require.Positive(t, StatusFrameSize)
	// Eight 32-bit counters followed by seven 64-bit fields.
	assert.Equal(t, 8*4+7*8, StatusFrameSize)
}
