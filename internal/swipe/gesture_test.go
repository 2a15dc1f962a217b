package swipe

import (
	"testing"

	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGestureDecision(t *testing.T) {
	g := NewGesture(DefaultThreshold)

	tc := []struct {
		name string
		dx   float64
		want models.Decision
	}{
		{name: "centered", dx: 0, want: models.DecisionNone},
		{name: "just short of like", dx: DefaultThreshold - 1, want: models.DecisionNone},
		{name: "at threshold", dx: DefaultThreshold, want: models.DecisionLike},
		{name: "past threshold", dx: 500, want: models.DecisionLike},
		{name: "just short of skip", dx: -(DefaultThreshold - 1), want: models.DecisionNone},
		{name: "at negative threshold", dx: -DefaultThreshold, want: models.DecisionSkip},
		{name: "far left", dx: -500, want: models.DecisionSkip},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Decision(tt.dx))
		})
	}
}

func TestGesturePresentation(t *testing.T) {
	g := NewGesture(DefaultThreshold)

	t.Run("opacity is full exactly at the decision boundary", func(t *testing.T) {
		assert.Equal(t, 1.0, g.OverlayOpacity(DefaultThreshold))
		assert.Equal(t, 1.0, g.OverlayOpacity(-DefaultThreshold))
		assert.Less(t, g.OverlayOpacity(DefaultThreshold-1), 1.0)
		assert.Equal(t, models.DecisionLike, g.Decision(DefaultThreshold))
	})

	t.Run("opacity is proportional and capped", func(t *testing.T) {
		assert.Equal(t, 0.0, g.OverlayOpacity(0))
		assert.InDelta(t, 0.5, g.OverlayOpacity(60), 1e-9)
		assert.Equal(t, 1.0, g.OverlayOpacity(1000))
	})

	t.Run("rotation is capped at ten degrees", func(t *testing.T) {
		assert.Equal(t, 0.0, g.Rotation(0))
		assert.InDelta(t, 5.0, g.Rotation(110), 1e-9)
		assert.InDelta(t, 10.0, g.Rotation(220), 1e-9)
		assert.InDelta(t, 10.0, g.Rotation(1000), 1e-9)
		assert.InDelta(t, -10.0, g.Rotation(-1000), 1e-9)
	})

	t.Run("custom threshold", func(t *testing.T) {
		g := NewGesture(40)
		assert.Equal(t, models.DecisionLike, g.Decision(40))
		assert.Equal(t, models.DecisionNone, g.Decision(39))
		assert.Equal(t, 1.0, g.OverlayOpacity(40))
	})

	t.Run("non-positive threshold uses default", func(t *testing.T) {
		assert.Equal(t, DefaultThreshold, NewGesture(0).Threshold)
		assert.Equal(t, models.DecisionNone, Gesture{}.Decision(DefaultThreshold-1))
		assert.Equal(t, models.DecisionLike, Gesture{}.Decision(DefaultThreshold))
	})
}
