package adjust

import (
	"fmt"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

const (
	shootoutVolumeScale = 20.0 // points per unit of combined 3PA-rate delta
	shootoutEffScale    = 25.0 // points per unit of combined 3P% delta
	shootoutRestBonus   = 1.0
	shootoutBonusCap    = 4.0

	restDays = 3 // both teams idle this long counts as a rest edge
)

// ShootoutAdjuster raises or lowers the total when both offenses shoot
// threes at volume/efficiency above league norms, with a small bump when
// both teams come in rested. One bounded bonus, split evenly.
type ShootoutAdjuster struct{}

func (ShootoutAdjuster) Name() string { return StageShootout }

func (ShootoutAdjuster) Apply(_ State, ctx *Context) Delta {
	hp, ap := ctx.Home.Profile, ctx.Away.Profile
	if hp == nil || ap == nil {
		return Delta{Note: "missing profile"}
	}
	if hp.Recent.Games == 0 || ap.Recent.Games == 0 {
		return Delta{Note: "no recent shooting data"}
	}

	volumeDelta := (hp.Recent.ThreeRate+ap.Recent.ThreeRate)/2 - ctx.League.AvgThreeRate
	effDelta := (hp.Recent.ThreePct+ap.Recent.ThreePct)/2 - ctx.League.AvgThreePct

	bonus := volumeDelta*shootoutVolumeScale + effDelta*shootoutEffScale

	if bothRested(hp, ap, ctx) {
		bonus += shootoutRestBonus
	}

	bonus = Clamp(bonus, -shootoutBonusCap, shootoutBonusCap)
	if bonus == 0 {
		return Delta{Note: "at league norms"}
	}

	return Delta{
		Home: bonus / 2,
		Away: bonus / 2,
		Note: fmt.Sprintf("bonus %+.2f (vol %+.3f eff %+.3f)", bonus, volumeDelta, effDelta),
	}
}

func bothRested(hp, ap *history.TeamProfile, ctx *Context) bool {
	if ctx.GameDate.IsZero() {
		return false
	}
	for _, p := range []*history.TeamProfile{hp, ap} {
		if len(p.LastGames) == 0 {
			return false
		}
		idle := ctx.GameDate.Sub(p.LastGames[0].Date).Hours() / 24
		if idle < restDays {
			return false
		}
	}
	return true
}
