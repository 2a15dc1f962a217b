package swipe

import (
	"math"

	"github.com/desertthunder/swipebeats/internal/models"
)

const (
	// DefaultThreshold is the drag distance that commits a decision.
	DefaultThreshold = 120.0
	// rotationCap bounds the displacement used for card rotation.
	rotationCap = 220.0
	// rotationDivisor maps the capped displacement to degrees (220 / 22 = 10°).
	rotationDivisor = 22.0
)

// Gesture maps horizontal drag displacement to a decision and its presentation values.
type Gesture struct {
	Threshold float64
}

// NewGesture returns a Gesture, substituting [DefaultThreshold] for non-positive thresholds.
func NewGesture(threshold float64) Gesture {
	if threshold <= 0 || math.IsNaN(threshold) {
		threshold = DefaultThreshold
	}
	return Gesture{Threshold: threshold}
}

func (g Gesture) threshold() float64 {
	if g.Threshold <= 0 {
		return DefaultThreshold
	}
	return g.Threshold
}

// Decision returns like at or beyond +threshold, skip at or beyond -threshold, none otherwise.
func (g Gesture) Decision(dx float64) models.Decision {
	t := g.threshold()
	switch {
	case dx >= t:
		return models.DecisionLike
	case dx <= -t:
		return models.DecisionSkip
	default:
		return models.DecisionNone
	}
}

// Rotation returns the card tilt in degrees, ±10° at most.
func (g Gesture) Rotation(dx float64) float64 {
	return math.Max(-rotationCap, math.Min(rotationCap, dx)) / rotationDivisor
}

// OverlayOpacity returns min(|dx|/threshold, 1).
func (g Gesture) OverlayOpacity(dx float64) float64 {
	return math.Min(math.Abs(dx)/g.threshold(), 1)
}
