package risk

import "github.com/loginwatch/loginwatch/internal/models"

// Level is the discrete display bucket derived from a score. The boundaries
// here are fixed; the allow/challenge/block decision uses the independently
// configurable thresholds.
type Level string

const (
	LevelMinimal  Level = "minimal"
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

func (l Level) String() string { return string(l) }

// LevelFor classifies a score against the fixed display boundaries.
func LevelFor(score float64) Level {
	switch {
	case score >= 0.90:
		return LevelCritical
	case score >= 0.80:
		return LevelHigh
	case score >= 0.60:
		return LevelMedium
	case score >= 0.30:
		return LevelLow
	default:
		return LevelMinimal
	}
}

// Outcome is the auth-flow decision for an attempt.
type Outcome string

const (
	OutcomeAllow     Outcome = "allow"
	OutcomeChallenge Outcome = "challenge"
	OutcomeBlock     Outcome = "block"
)

// Decide maps a score onto the configured decision cutovers: scores at or
// above block are blocked, at or above high are challenged, everything else
// is allowed.
func Decide(score float64, t models.Thresholds) Outcome {
	switch {
	case score >= t.Block:
		return OutcomeBlock
	case score >= t.High:
		return OutcomeChallenge
	default:
		return OutcomeAllow
	}
}
