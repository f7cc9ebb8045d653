package adjust

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

func venueProfile(seasonPPG, homePPG, awayPPG float64, splitGames int) history.ProfileResult {
	return history.ProfileResult{
		Profile: &history.TeamProfile{
			Season: history.Aggregates{Games: 20, PointsPerGame: seasonPPG},
			Home:   history.Aggregates{Games: splitGames, PointsPerGame: homePPG},
			Away:   history.Aggregates{Games: splitGames, PointsPerGame: awayPPG},
		},
		Confidence: history.ConfidenceOK,
	}
}

func TestHomeRoadStrongVsWeak(t *testing.T) {
	ctx := &Context{
		Home: venueProfile(110, 114.5, 105, 8), // strong at home
		Away: venueProfile(108, 112, 103.5, 8), // weak on the road
	}
	d := HomeRoadAdjuster{}.Apply(State{}, ctx)

	// Raw edge 2.5 damped by 0.8 -> 2.0, split 60/40 toward home.
	assert.InDelta(t, 1.2, d.Home, 1e-9)
	assert.InDelta(t, 0.8, d.Away, 1e-9)
}

func TestHomeRoadNegativeEdgeFavorsAway(t *testing.T) {
	ctx := &Context{
		Home: venueProfile(110, 105, 112, 8),   // weak at home
		Away: venueProfile(108, 105, 113.5, 8), // strong on the road
	}
	d := HomeRoadAdjuster{}.Apply(State{}, ctx)

	// Raw -2.5 damped -> -2.0, 60% of the hit lands on the away side.
	assert.InDelta(t, -0.8, d.Home, 1e-9)
	assert.InDelta(t, -1.2, d.Away, 1e-9)
}

func TestHomeRoadAmbiguousPairsAreExactlyZero(t *testing.T) {
	normal := venueProfile(110, 111, 109, 8)
	strong := venueProfile(110, 114.5, 110, 8)

	tests := []struct {
		name       string
		home, away history.ProfileResult
	}{
		{"normal vs normal", normal, normal},
		{"strong vs strong road", strong, venueProfile(108, 108, 112.5, 8)},
		{"weak vs weak road", venueProfile(110, 105, 110, 8), venueProfile(108, 108, 103.5, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := HomeRoadAdjuster{}.Apply(State{}, &Context{Home: tt.home, Away: tt.away})
			assert.Zero(t, d.Home)
			assert.Zero(t, d.Away)
		})
	}
}

func TestHomeRoadThinSplitClassifiesNormal(t *testing.T) {
	ctx := &Context{
		Home: venueProfile(110, 120, 105, history.MinSample-1),
		Away: venueProfile(108, 112, 95, history.MinSample-1),
	}
	d := HomeRoadAdjuster{}.Apply(State{}, ctx)
	assert.Zero(t, d.Home)
	assert.Zero(t, d.Away)
}
