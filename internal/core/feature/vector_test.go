package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

func TestBuildEmptyInputs(t *testing.T) {
	v := Build(Inputs{}, Inputs{})

	require.Len(t, v, len(Names()))
	assert.Equal(t, 1.0, v[Bias])
	for _, name := range Names() {
		if name == Bias {
			continue
		}
		assert.Zero(t, v[name], "missing inputs must contribute 0 for %s", name)
	}
}

func TestBuildDeltasFromSeasonRate(t *testing.T) {
	profile := &history.TeamProfile{
		TeamID: "BOS",
		Season: history.Aggregates{Games: 20, PointsPerGame: 110, Pace: 100},
		Recent: history.Aggregates{Games: 5, PointsPerGame: 116, Pace: 103},
	}
	matchup := &history.MatchupProfile{
		HeadToHead: &history.BucketStats{Games: 3, PointsPerGame: 118},
		VsPace: map[history.PaceTier]*history.BucketStats{
			history.PaceFast: {Games: 4, PointsPerGame: 114},
		},
		VsDefense: map[history.DefenseTier]*history.BucketStats{
			history.DefenseElite: {Games: 6, PointsPerGame: 104},
		},
	}

	v := Build(Inputs{
		Profile:     profile,
		Matchup:     matchup,
		OppDefTier:  history.DefenseElite,
		OppPaceTier: history.PaceFast,
	}, Inputs{})

	assert.InDelta(t, 6.0, v[HomeForm], 1e-9)
	assert.InDelta(t, 3.0, v[HomePaceTrend], 1e-9)
	assert.InDelta(t, -6.0, v[HomeVsDefense], 1e-9)
	assert.InDelta(t, 4.0, v[HomeVsPace], 1e-9)
	assert.InDelta(t, 8.0, v[HomeHeadToHead], 1e-9)

	// The away side got no inputs.
	assert.Zero(t, v[AwayForm])
	assert.Zero(t, v[AwayHeadToHead])
}

func TestBuildThinRecentWindowSkipsFormFeatures(t *testing.T) {
	profile := &history.TeamProfile{
		Season: history.Aggregates{Games: 20, PointsPerGame: 110, Pace: 100},
		Recent: history.Aggregates{Games: history.MinSample - 1, PointsPerGame: 130, Pace: 110},
	}
	v := Build(Inputs{Profile: profile}, Inputs{})
	assert.Zero(t, v[HomeForm])
	assert.Zero(t, v[HomePaceTrend])
}

func TestCorrectDotProduct(t *testing.T) {
	v := Vector{Bias: 1.0, HomeForm: 2.0, AwayForm: -1.0}
	weights := map[string]float64{Bias: 0.5, HomeForm: 1.5, AwayForm: 2.0}

	assert.InDelta(t, 0.5+3.0-2.0, Correct(v, weights), 1e-9)

	// Names absent from the weights contribute nothing.
	assert.Zero(t, Correct(Vector{HomeVsPace: 4.0}, weights))
	assert.Zero(t, Correct(v, nil))
}

func TestCorrectSumsInCanonicalOrder(t *testing.T) {
	// Catastrophic-cancellation weights: any change in summation order
	// changes the float result, so repeated calls must agree exactly.
	v := Vector{Bias: 1.0, HomeForm: 1.0, AwayForm: 1.0, HomePaceTrend: 1.0}
	weights := map[string]float64{
		Bias:          1.0,
		HomeForm:      1e16,
		AwayForm:      -1e16,
		HomePaceTrend: 0.5,
	}

	first := Correct(v, weights)
	for i := 0; i < 20000; i++ {
		require.Equal(t, first, Correct(v, weights))
	}
}
