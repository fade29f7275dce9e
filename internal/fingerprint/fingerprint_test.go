package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"sha256 hex", "a3f5b8c2d1e4f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1", true},
		{"fnv fallback length", "a1b2c3d4e5f60718", true},
		{"minimum length", "deadbeef", true},
		{"too short", "deadbee", false},
		{"uppercase rejected", "DEADBEEF", false},
		{"non-hex", "zzzzzzzz", false},
		{"empty", "", false},
		{"too long", "a3f5b8c2d1e4f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1ff", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidID(tt.id))
		})
	}
}

func TestFromComponents_Deterministic(t *testing.T) {
	components := map[string]any{
		CompUserAgent:      "Mozilla/5.0",
		CompLanguage:       "en-US",
		CompScreen:         "1920x1080",
		CompCookiesEnabled: true,
		CompColorDepth:     24,
	}

	fp1, err := FromComponents(components)
	assert.NoError(t, err)

	fp2, err := FromComponents(components)
	assert.NoError(t, err)

	assert.Equal(t, fp1.ID, fp2.ID)
	assert.False(t, fp1.Fallback)
	assert.Len(t, fp1.ID, 64)
}

func TestFromComponents_ChangedComponentChangesID(t *testing.T) {
	base := map[string]any{
		CompUserAgent: "Mozilla/5.0",
		CompScreen:    "1920x1080",
	}
	changed := map[string]any{
		CompUserAgent: "Mozilla/5.0",
		CompScreen:    "2560x1440",
	}

	fp1, err := FromComponents(base)
	assert.NoError(t, err)
	fp2, err := FromComponents(changed)
	assert.NoError(t, err)

	assert.NotEqual(t, fp1.ID, fp2.ID)
}

func TestFromComponents_DropsUnknownKeys(t *testing.T) {
	fp, err := FromComponents(map[string]any{
		CompUserAgent: "Mozilla/5.0",
		"evil_key":    "payload",
		"__proto__":   "payload",
	})

	assert.NoError(t, err)
	assert.Contains(t, fp.Components, CompUserAgent)
	assert.NotContains(t, fp.Components, "evil_key")
	assert.NotContains(t, fp.Components, "__proto__")
}

func TestFromComponents_InvalidValueDegradesToUnavailable(t *testing.T) {
	fp, err := FromComponents(map[string]any{
		CompUserAgent: "Mozilla/5.0",
		CompFonts:     map[string]any{"nested": "object"},
	})

	assert.NoError(t, err)
	assert.Equal(t, Unavailable, fp.Components[CompFonts])
}

func TestFromComponents_RejectsEmpty(t *testing.T) {
	_, err := FromComponents(map[string]any{})
	assert.Error(t, err)

	_, err = FromComponents(map[string]any{"unknown": "only"})
	assert.Error(t, err)
}

func TestFromComponents_AcceptsStringSlices(t *testing.T) {
	// Decoded JSON arrives as []any
	fp, err := FromComponents(map[string]any{
		CompUserAgent: "Mozilla/5.0",
		CompFonts:     []any{"Arial", "Helvetica"},
	})

	assert.NoError(t, err)
	assert.Equal(t, []any{"Arial", "Helvetica"}, fp.Components[CompFonts])
}

type failingHasher struct{}

func (failingHasher) Sum(data []byte) (string, bool) { return "", false }

func TestHashComponents_FallbackHash(t *testing.T) {
	components := map[string]any{CompUserAgent: "Mozilla/5.0"}

	id, fellBack, err := hashComponents(components, failingHasher{})
	assert.NoError(t, err)
	assert.True(t, fellBack)
	assert.Len(t, id, 16)
	assert.True(t, ValidID(id))

	// Fallback hash is still deterministic
	id2, _, err := hashComponents(components, failingHasher{})
	assert.NoError(t, err)
	assert.Equal(t, id, id2)
}

func TestCanonicalize_OrderIndependent(t *testing.T) {
	a, err := canonicalize(map[string]any{"b": 2, "a": 1, "c": 3})
	assert.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(a))
}
