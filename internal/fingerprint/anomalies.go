package fingerprint

import (
	"fmt"
	"strings"
)

// Anomaly flags derived from fingerprint components. Each maps to a scoring
// contribution in the risk package and is persisted on the audit row.
const (
	AnomalyViewportExceedsScreen = "viewport_exceeds_screen"
	AnomalyLowFontDiversity      = "low_font_diversity"
	AnomalyCanvasBlocked         = "canvas_blocked"
	AnomalyWebGLBlocked          = "webgl_blocked"
	AnomalyCookiesDisabled       = "cookies_disabled"
)

// lowFontThreshold: real desktop browsers typically detect dozens of fonts;
// below this the environment is either heavily locked down or synthetic.
const lowFontThreshold = 5

// Anomalies inspects a fingerprint's components and returns the set of
// suspicious-configuration flags, in stable order.
func Anomalies(fp *Fingerprint) []string {
	if fp == nil {
		return nil
	}

	var flags []string

	if vw, vh, ok := geometry(fp.Components[CompViewport]); ok {
		if sw, sh, ok := geometry(fp.Components[CompScreen]); ok {
			if vw > sw || vh > sh {
				flags = append(flags, AnomalyViewportExceedsScreen)
			}
		}
	}

	if n, ok := fontCount(fp.Components[CompFonts]); ok && n < lowFontThreshold {
		flags = append(flags, AnomalyLowFontDiversity)
	}

	if fp.Components[CompCanvas] == Unavailable || fp.Components[CompCanvas] == "blocked" {
		flags = append(flags, AnomalyCanvasBlocked)
	}

	if fp.Components[CompWebGLRenderer] == Unavailable || fp.Components[CompWebGLRenderer] == "blocked" {
		flags = append(flags, AnomalyWebGLBlocked)
	}

	if enabled, ok := fp.Components[CompCookiesEnabled].(bool); ok && !enabled {
		flags = append(flags, AnomalyCookiesDisabled)
	}

	return flags
}

func geometry(v any) (width, height int, ok bool) {
	s, isStr := v.(string)
	if !isStr {
		return 0, 0, false
	}
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(s, "%dx%d", &width, &height); err != nil {
		return 0, 0, false
	}
	return width, height, true
}

func fontCount(v any) (int, bool) {
	switch fonts := v.(type) {
	case []string:
		return len(fonts), true
	case []any:
		return len(fonts), true
	default:
		return 0, false
	}
}
