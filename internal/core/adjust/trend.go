package adjust

import (
	"fmt"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

const (
	trendPaceScale    = 0.3
	trendOffenseScale = 0.5
	trendDefenseScale = 0.375

	trendPaceCap    = 1.5
	trendOffenseCap = 2.0
	trendDefenseCap = 1.5
	trendTotalCap   = 4.0
)

// TrendAdjuster converts each team's recent-vs-season deltas in tempo,
// offensive rating, and defensive rating into three independently capped
// point factors. The summed per-team total is capped again at ±4, so no
// input magnitude can push a team past that.
type TrendAdjuster struct{}

func (TrendAdjuster) Name() string { return StageTrend }

func (TrendAdjuster) Apply(_ State, ctx *Context) Delta {
	home := trendPoints(ctx.Home.Profile)
	away := trendPoints(ctx.Away.Profile)

	return Delta{
		Home: home,
		Away: away,
		Note: fmt.Sprintf("home %+.2f away %+.2f", home, away),
	}
}

func trendPoints(p *history.TeamProfile) float64 {
	if p == nil || p.Recent.Games < history.MinSample {
		return 0
	}

	paceFactor := Clamp((p.Recent.Pace-p.Season.Pace)*trendPaceScale, -trendPaceCap, trendPaceCap)
	offFactor := Clamp((p.Recent.OffRating-p.Season.OffRating)*trendOffenseScale, -trendOffenseCap, trendOffenseCap)
	// Defensive rating falls as defense improves, so the sign flips:
	// tightening defense reads as positive form.
	defFactor := Clamp((p.Season.DefRating-p.Recent.DefRating)*trendDefenseScale, -trendDefenseCap, trendDefenseCap)

	return Clamp(paceFactor+offFactor+defFactor, -trendTotalCap, trendTotalCap)
}
