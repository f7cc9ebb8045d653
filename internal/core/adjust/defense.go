package adjust

import (
	"fmt"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

const (
	// Maximum shift (pace-neutral) for facing the league's best or worst
	// defense. Rank in the middle of the table shifts nothing.
	maxDefenseShift = 4.0

	// Recent-vs-season offensive efficiency deltas marking a hot or cold
	// scoring team.
	hotFormThreshold  = 4.0
	coldFormThreshold = -4.0

	hotPenaltyMult  = 0.30
	coldPenaltyMult = 1.50
)

// DefenseAdjuster shifts each team's score toward or away from league
// average based on the opponent's defensive-rating rank. The magnitude of
// a penalty is modulated by the scoring team's recent form: a hot offense
// shrinks the penalty, a cold one amplifies it.
type DefenseAdjuster struct{}

func (DefenseAdjuster) Name() string { return StageDefense }

func (DefenseAdjuster) Apply(_ State, ctx *Context) Delta {
	if ctx.Rankings == nil {
		return Delta{Note: "no ranking table"}
	}

	home := defenseShift(ctx.Home, ctx.Away, ctx)
	away := defenseShift(ctx.Away, ctx.Home, ctx)

	return Delta{
		Home: home * ctx.Pace.Multiplier(),
		Away: away * ctx.Pace.Multiplier(),
		Note: fmt.Sprintf("home %+.2f away %+.2f (pace x%.2f)", home, away, ctx.Pace.Multiplier()),
	}
}

// defenseShift computes the pace-neutral shift for one scoring team
// against its opponent's defense.
func defenseShift(scorer, opponent history.ProfileResult, ctx *Context) float64 {
	if scorer.Profile == nil || opponent.Profile == nil {
		return 0
	}

	rank, of, ok := ctx.Rankings.DefenseRank(opponent.Profile.TeamID)
	if !ok || of < 2 {
		return 0
	}

	// rankFrac 0.0 = stingiest defense, 1.0 = most generous.
	rankFrac := float64(rank-1) / float64(of-1)
	shift := (rankFrac - 0.5) * 2 * maxDefenseShift

	// Only penalties are form-modulated; a bonus against a weak defense
	// stands as-is.
	if shift < 0 {
		shift *= formMultiplier(scorer.Profile)
	}

	return shift
}

func formMultiplier(p *history.TeamProfile) float64 {
	if p.Recent.Games < history.MinSample {
		return 1.0
	}
	delta := p.Recent.OffRating - p.Season.OffRating
	switch {
	case delta >= hotFormThreshold:
		return hotPenaltyMult
	case delta <= coldFormThreshold:
		return coldPenaltyMult
	default:
		return 1.0
	}
}
