package mastery

import "math"

// Signal weights. They sum to 1 so the blended score stays in [0, 1].
const (
	AccuracyWeight   = 0.35
	TimeWeight       = 0.15
	ExposureWeight   = 0.15
	ConfidenceWeight = 0.15
	SimilarityWeight = 0.20
)

const (
	// ExpectedResponseMs is the response time at which the time signal
	// reaches zero.
	ExpectedResponseMs = 30000.0

	// ExposureRate controls how quickly repeated exposure saturates.
	ExposureRate = 0.3

	// MaxConfidence is the top of the self-reported confidence scale.
	MaxConfidence = 5.0

	// DefaultConfidence is used when neither the batch nor the stored row
	// carries a confidence value.
	DefaultConfidence = 2.5

	// DefaultSimilaritySignal is the neutral value of the similarity input
	// until an embedding-based signal is available.
	DefaultSimilaritySignal = 0.5

	neutralTimeRatio = 0.5
)

// TimeSignal maps the mean of the timed observations to [0, 1]. Faster is
// higher. Observations without a positive time are ignored; when none are
// left the signal is neutral.
func TimeSignal(batch []Observation) float64 {
	var sum float64
	var n int
	for _, o := range batch {
		if o.TimeMs != nil && *o.TimeMs > 0 {
			sum += float64(*o.TimeMs)
			n++
		}
	}
	ratio := neutralTimeRatio
	if n > 0 {
		ratio = math.Min(sum/float64(n)/ExpectedResponseMs, 1.0)
	}
	return 1 - ratio
}

// ExposureSignal saturates toward 1 as the exposure count grows.
func ExposureSignal(count int) float64 {
	if count <= 0 {
		return 0
	}
	return 1 - math.Exp(-ExposureRate*float64(count))
}

// resolveConfidence picks the 1-5 confidence value for an update: the mean
// of the batch's explicit values, else the stored value, else the default.
func resolveConfidence(batch []Observation, stored float64) float64 {
	var sum float64
	var n int
	for _, o := range batch {
		if o.Confidence != nil {
			sum += float64(*o.Confidence)
			n++
		}
	}
	switch {
	case n > 0:
		return clamp(sum/float64(n), 1, MaxConfidence)
	case stored > 0:
		return stored * MaxConfidence
	default:
		return DefaultConfidence
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
