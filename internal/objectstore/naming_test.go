package objectstore

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase62Encode(t *testing.T) {
	assert.Equal(t, "0", base62Encode(0))
	assert.Equal(t, "z", base62Encode(35))
	assert.Equal(t, "Z", base62Encode(61))
	assert.Equal(t, "10", base62Encode(62))
}

func TestShortIDShape(t *testing.T) {
	id := ShortID(time.Now())
	parts := strings.SplitN(id, "_", 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], timestampWidth)
	assert.Len(t, parts[1], randomWidth)
	for _, r := range id {
		assert.Contains(t, nanoidAlphabet+"_", string(r))
	}
}

func TestObjectNameFormat(t *testing.T) {
	at := time.Date(2024, 12, 5, 10, 30, 0, 0, time.UTC)
	name := ObjectName(".jpg", at)
	assert.True(t, strings.HasPrefix(name, "20241205/"), name)
	assert.True(t, strings.HasSuffix(name, ".jpg"), name)

	// extension without a leading dot gets one
	name = ObjectName("png", at)
	assert.True(t, strings.HasSuffix(name, ".png"), name)

	// no extension is allowed
	name = ObjectName("", at)
	assert.False(t, strings.Contains(name, "."), name)
}

// Same-millisecond pressure: a tight loop produces many IDs within each
// millisecond; all must be unique.
func TestShortIDUniquenessUnderPressure(t *testing.T) {
	const n = 100_000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := ShortID(time.Now())
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate short ID generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNanoIDLengthAndAlphabet(t *testing.T) {
	id := nanoID(16)
	require.Len(t, id, 16)
	for _, r := range id {
		assert.Contains(t, nanoidAlphabet, string(r))
	}
}
