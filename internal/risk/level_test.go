package risk

import (
	"testing"

	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0.0, LevelMinimal},
		{0.29, LevelMinimal},
		{0.30, LevelLow},
		{0.59, LevelLow},
		{0.60, LevelMedium},
		{0.79, LevelMedium},
		{0.80, LevelHigh},
		{0.89, LevelHigh},
		{0.90, LevelCritical},
		{1.0, LevelCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score %v", tt.score)
	}
}

func TestDecide_DefaultThresholds(t *testing.T) {
	thresholds := models.DefaultThresholds()

	tests := []struct {
		score float64
		want  Outcome
	}{
		{0.0, OutcomeAllow},
		{0.79, OutcomeAllow},
		{0.80, OutcomeChallenge},
		{0.89, OutcomeChallenge},
		{0.90, OutcomeBlock},
		{1.0, OutcomeBlock},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Decide(tt.score, thresholds), "score %v", tt.score)
	}
}

func TestDecide_TunedThresholds(t *testing.T) {
	// A stricter deployment challenges earlier and blocks earlier
	strict := models.Thresholds{Low: 0.2, Medium: 0.4, High: 0.5, Block: 0.7}

	assert.Equal(t, OutcomeAllow, Decide(0.49, strict))
	assert.Equal(t, OutcomeChallenge, Decide(0.50, strict))
	assert.Equal(t, OutcomeBlock, Decide(0.70, strict))
}

func TestDecide_BoundaryIsInclusive(t *testing.T) {
	thresholds := models.Thresholds{Low: 0.3, Medium: 0.6, High: 0.8, Block: 0.8}

	// When high == block, block wins at the shared boundary
	assert.Equal(t, OutcomeBlock, Decide(0.8, thresholds))
}
