package spacedrep

import (
	"math"
	"time"
)

// Stability bounds and growth factors, in days.
const (
	InitialStability = 1.0
	MinStability     = 0.5
	MaxStability     = 30.0

	GrowthFactor = 1.5
	DecayFactor  = 0.6

	// RecallThreshold is the accuracy above which stability grows.
	RecallThreshold = 0.7
)

// NextStability returns the stability after a review at the given accuracy.
// Accuracy strictly above RecallThreshold grows stability up to
// MaxStability; anything else shrinks it down to MinStability.
func NextStability(current, accuracy float64) float64 {
	if current <= 0 {
		current = InitialStability
	}
	if accuracy > RecallThreshold {
		return math.Min(current*GrowthFactor, MaxStability)
	}
	return math.Max(current*DecayFactor, MinStability)
}

// Schedule computes the new stability and the next review time for a
// review performed at now.
func Schedule(current, accuracy float64, now time.Time) (stability float64, due time.Time) {
	stability = NextStability(current, accuracy)
	return stability, now.Add(stabilityDuration(stability))
}

func stabilityDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}
