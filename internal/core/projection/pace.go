package projection

import (
	"github.com/dmarsh417/hoopcast/internal/config"
	"github.com/dmarsh417/hoopcast/internal/core/history"
)

type PaceTag string

const (
	PaceTagSlow   PaceTag = "slow"
	PaceTagNormal PaceTag = "normal"
	PaceTagFast   PaceTag = "fast"
)

const (
	slowPaceCeiling = 96.0
	fastPaceFloor   = 101.0

	// Per-team tempo blend: recent form dominates season tempo.
	paceSeasonWeight = 0.40
	paceRecentWeight = 0.60

	// The home team dictates tempo slightly more often than not.
	homePaceWeight = 0.52
	awayPaceWeight = 0.48
)

// Pace is the projected game tempo. Later stages read it (never mutate it)
// and scale their adjustments by Multiplier.
type Pace struct {
	Value float64
	Tag   PaceTag
}

// Multiplier converts pace into the scale factor applied by downstream
// adjusters (1.0 at 100 possessions).
func (p Pace) Multiplier() float64 { return p.Value / 100.0 }

// ProjectPace combines both teams' tempo blends into one game pace.
// A missing profile contributes the league-average pace.
func ProjectPace(home, away history.ProfileResult, league config.LeagueConstants) Pace {
	h := teamPace(home, league)
	a := teamPace(away, league)

	value := homePaceWeight*h + awayPaceWeight*a

	tag := PaceTagNormal
	switch {
	case value < slowPaceCeiling:
		tag = PaceTagSlow
	case value > fastPaceFloor:
		tag = PaceTagFast
	}

	return Pace{Value: value, Tag: tag}
}

func teamPace(pr history.ProfileResult, league config.LeagueConstants) float64 {
	if pr.Profile == nil {
		return league.AvgPace
	}
	p := pr.Profile
	if p.Recent.Games == 0 {
		return p.Season.Pace
	}
	return paceSeasonWeight*p.Season.Pace + paceRecentWeight*p.Recent.Pace
}
