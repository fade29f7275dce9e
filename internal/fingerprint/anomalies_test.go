package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnomalies_CleanFingerprint(t *testing.T) {
	fp := &Fingerprint{Components: map[string]any{
		CompScreen:         "1920x1080",
		CompViewport:       "1280x720",
		CompFonts:          []string{"Arial", "Calibri", "Consolas", "Segoe UI", "Tahoma", "Verdana"},
		CompCanvas:         "abc123",
		CompWebGLRenderer:  "ANGLE",
		CompCookiesEnabled: true,
	}}

	assert.Empty(t, Anomalies(fp))
}

func TestAnomalies_ViewportExceedsScreen(t *testing.T) {
	fp := &Fingerprint{Components: map[string]any{
		CompScreen:   "1366x768",
		CompViewport: "1920x1080",
	}}

	assert.Contains(t, Anomalies(fp), AnomalyViewportExceedsScreen)
}

func TestAnomalies_LowFontDiversity(t *testing.T) {
	fp := &Fingerprint{Components: map[string]any{
		CompFonts: []string{"Arial", "Courier New"},
	}}

	assert.Contains(t, Anomalies(fp), AnomalyLowFontDiversity)

	// JSON-decoded form
	fp = &Fingerprint{Components: map[string]any{
		CompFonts: []any{"Arial"},
	}}
	assert.Contains(t, Anomalies(fp), AnomalyLowFontDiversity)
}

func TestAnomalies_BlockedSubsystems(t *testing.T) {
	fp := &Fingerprint{Components: map[string]any{
		CompCanvas:        Unavailable,
		CompWebGLRenderer: "blocked",
	}}

	flags := Anomalies(fp)
	assert.Contains(t, flags, AnomalyCanvasBlocked)
	assert.Contains(t, flags, AnomalyWebGLBlocked)
}

func TestAnomalies_CookiesDisabled(t *testing.T) {
	fp := &Fingerprint{Components: map[string]any{
		CompCookiesEnabled: false,
	}}

	assert.Contains(t, Anomalies(fp), AnomalyCookiesDisabled)
}

func TestAnomalies_StableOrder(t *testing.T) {
	fp := &Fingerprint{Components: map[string]any{
		CompScreen:         "800x600",
		CompViewport:       "1920x1080",
		CompFonts:          []string{"Arial"},
		CompCanvas:         Unavailable,
		CompWebGLRenderer:  Unavailable,
		CompCookiesEnabled: false,
	}}

	expected := []string{
		AnomalyViewportExceedsScreen,
		AnomalyLowFontDiversity,
		AnomalyCanvasBlocked,
		AnomalyWebGLBlocked,
		AnomalyCookiesDisabled,
	}
	assert.Equal(t, expected, Anomalies(fp))
	assert.Equal(t, expected, Anomalies(fp))
}

func TestAnomalies_NilAndMalformed(t *testing.T) {
	assert.Nil(t, Anomalies(nil))

	// Malformed geometry strings never flag
	fp := &Fingerprint{Components: map[string]any{
		CompScreen:   "garbage",
		CompViewport: "1920x1080",
	}}
	assert.Empty(t, Anomalies(fp))
}
