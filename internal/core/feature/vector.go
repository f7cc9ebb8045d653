package feature

import (
	"github.com/dmarsh417/hoopcast/internal/core/history"
)

// Feature names, in canonical order. The vector is fixed-length: every
// build emits exactly these names, with 0 standing in for missing inputs.
const (
	Bias           = "bias"
	HomeForm       = "home_form"
	AwayForm       = "away_form"
	HomePaceTrend  = "home_pace_trend"
	AwayPaceTrend  = "away_pace_trend"
	HomeVsDefense  = "home_vs_defense"
	AwayVsDefense  = "away_vs_defense"
	HomeVsPace     = "home_vs_pace"
	AwayVsPace     = "away_vs_pace"
	HomeHeadToHead = "home_h2h"
	AwayHeadToHead = "away_h2h"
)

// Names is the canonical feature order, used for model initialization and
// deterministic persistence.
func Names() []string {
	return []string{
		Bias,
		HomeForm, AwayForm,
		HomePaceTrend, AwayPaceTrend,
		HomeVsDefense, AwayVsDefense,
		HomeVsPace, AwayVsPace,
		HomeHeadToHead, AwayHeadToHead,
	}
}

// Vector is a named feature vector. It is captured into the prediction
// record at prediction time and reused verbatim by the learner — profile
// data drifts, so recomputing it post-hoc is not allowed.
type Vector map[string]float64

// Inputs are the per-side ingredients for one team's features.
type Inputs struct {
	Profile *history.TeamProfile
	Matchup *history.MatchupProfile

	// The opponent's archetype classification, from the rankings table.
	OppDefTier  history.DefenseTier
	OppPaceTier history.PaceTier
}

// Build assembles the full vector for a game. All entries are deltas from
// the team's season scoring rate, keeping the vector scale-free; missing
// inputs contribute 0, never an error.
func Build(home, away Inputs) Vector {
	v := make(Vector, len(Names()))
	for _, name := range Names() {
		v[name] = 0
	}
	v[Bias] = 1.0

	fillSide(v, home, HomeForm, HomePaceTrend, HomeVsDefense, HomeVsPace, HomeHeadToHead)
	fillSide(v, away, AwayForm, AwayPaceTrend, AwayVsDefense, AwayVsPace, AwayHeadToHead)

	return v
}

func fillSide(v Vector, in Inputs, formKey, paceKey, defKey, paceBucketKey, h2hKey string) {
	p := in.Profile
	if p == nil {
		return
	}

	if p.Recent.Games >= history.MinSample {
		v[formKey] = p.Recent.PointsPerGame - p.Season.PointsPerGame
		v[paceKey] = p.Recent.Pace - p.Season.Pace
	}

	if in.Matchup == nil {
		return
	}

	if b := in.Matchup.VsDefense[in.OppDefTier]; b != nil && b.Games > 0 {
		v[defKey] = b.PointsPerGame - p.Season.PointsPerGame
	}
	if b := in.Matchup.VsPace[in.OppPaceTier]; b != nil && b.Games > 0 {
		v[paceBucketKey] = b.PointsPerGame - p.Season.PointsPerGame
	}
	if b := in.Matchup.HeadToHead; b != nil && b.Games > 0 {
		v[h2hKey] = b.PointsPerGame - p.Season.PointsPerGame
	}
}

// Correct applies the learned linear correction: the dot product of the
// vector with the persisted weights, summed in canonical Names order so
// repeated runs produce bit-identical totals. Unknown names on either
// side contribute nothing.
func Correct(v Vector, weights map[string]float64) float64 {
	var sum float64
	for _, name := range Names() {
		sum += weights[name] * v[name]
	}
	return sum
}
