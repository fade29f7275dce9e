package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Thresholds are the admin-tunable decision cutover points consumed by the
// auth flow. Invariant: 0 <= Low <= Medium <= High <= Block <= 1. They default
// to the fixed display boundaries but may diverge from them.
type Thresholds struct {
	Low       float64    `db:"low"`
	Medium    float64    `db:"medium"`
	High      float64    `db:"high"`
	Block     float64    `db:"block"`
	UpdatedBy *uuid.UUID `db:"updated_by"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// DefaultThresholds mirror the display boundaries for medium/high/critical.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Low:    0.30,
		Medium: 0.60,
		High:   0.80,
		Block:  0.90,
	}
}

// Validate enforces the monotonic ordering invariant.
func (t Thresholds) Validate() error {
	values := []struct {
		name  string
		value float64
	}{
		{"low", t.Low},
		{"medium", t.Medium},
		{"high", t.High},
		{"block", t.Block},
	}

	prev := 0.0
	prevName := "zero"
	for _, v := range values {
		if v.value < 0 || v.value > 1 {
			return fmt.Errorf("%w: threshold %q must be between 0 and 1, got %v", ErrValidation, v.name, v.value)
		}
		if v.value < prev {
			return fmt.Errorf("%w: threshold %q (%v) must not be below %q (%v)", ErrValidation, v.name, v.value, prevName, prev)
		}
		prev = v.value
		prevName = v.name
	}
	return nil
}
