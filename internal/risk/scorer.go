// Package risk scores individual login attempts. Scoring is pure and
// deterministic: identical inputs always produce identical scores. Synthetic
// jitter for seed data lives in the synthetic package, never here.
package risk

import (
	"github.com/loginwatch/loginwatch/internal/fingerprint"
	"github.com/loginwatch/loginwatch/internal/geo"
	"github.com/loginwatch/loginwatch/internal/useragent"
)

// Contribution weights. The heuristics are illustrative signal weights, not a
// completeness claim.
const (
	weightFailedAttempt = 0.30
	weightBotUA         = 0.40
	weightBotUAStrong   = 0.50
	weightVPN           = 0.20
	weightGeoUnknown    = 0.10
	weightShortUA       = 0.20

	minUserAgentLength = 10
)

// anomalyWeights maps fingerprint anomaly flags to their additive
// contributions.
var anomalyWeights = map[string]float64{
	fingerprint.AnomalyViewportExceedsScreen: 0.20,
	fingerprint.AnomalyLowFontDiversity:      0.10,
	fingerprint.AnomalyCanvasBlocked:         0.15,
	fingerprint.AnomalyWebGLBlocked:          0.15,
	fingerprint.AnomalyCookiesDisabled:       0.10,
}

// Input is the attempt context consumed by the scorer.
type Input struct {
	Success         bool
	UserAgent       string
	Location        *geo.Location
	Anomalies       []string
	IsTrustedDevice bool
}

// Scorer computes risk scores. The dampening factor scales only the
// network-level contributions (VPN, unresolved geolocation) for trusted
// devices; behavioral signals are never dampened by trust.
type Scorer struct {
	trustDampening float64
}

// NewScorer creates a Scorer. trustDampening must be in [0,1); values outside
// that range are clamped to the 0.5 default.
func NewScorer(trustDampening float64) *Scorer {
	if trustDampening < 0 || trustDampening >= 1.0 {
		trustDampening = 0.5
	}
	return &Scorer{trustDampening: trustDampening}
}

// Score returns the attempt's risk in [0,1]. Contributions are additive and
// the sum is clamped at 1.0.
func (s *Scorer) Score(in Input) float64 {
	var score float64

	if !in.Success {
		score += weightFailedAttempt
	}

	if bot, strong := useragent.IsBot(in.UserAgent); bot {
		if strong {
			score += weightBotUAStrong
		} else {
			score += weightBotUA
		}
	}

	if len(in.UserAgent) < minUserAgentLength {
		score += weightShortUA
	}

	dampen := 1.0
	if in.IsTrustedDevice {
		dampen = s.trustDampening
	}

	if in.Location != nil && in.Location.IsVPN {
		score += weightVPN * dampen
	}

	if !in.Location.Resolved() {
		score += weightGeoUnknown * dampen
	}

	for _, flag := range in.Anomalies {
		score += anomalyWeights[flag]
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
