package adjust

import (
	"time"

	"github.com/dmarsh417/hoopcast/internal/config"
	"github.com/dmarsh417/hoopcast/internal/core/history"
	"github.com/dmarsh417/hoopcast/internal/core/projection"
	"github.com/dmarsh417/hoopcast/internal/core/rankings"
)

// Stage names, used for caps, breakdown rows, and log lines.
const (
	StageDefense  = "defense"
	StageHomeRoad = "home_road"
	StageTrend    = "trend"
	StageShootout = "shootout"
	StageFatigue  = "fatigue"
	StageCluster  = "cluster"
)

// ClusterSignal is the opaque additive adjustment from the clustering
// service. Nil in Context means the service was unavailable.
type ClusterSignal struct {
	PaceDelta        float64
	ScoringDeltaHome float64
	ScoringDeltaAway float64
}

// Context carries everything a stage may read. Stages never mutate it.
type Context struct {
	GameDate time.Time

	Home history.ProfileResult
	Away history.ProfileResult

	HomeMatchup *history.MatchupProfile
	AwayMatchup *history.MatchupProfile

	Pace     projection.Pace
	League   config.LeagueConstants
	Rankings *rankings.Table
	Cluster  *ClusterSignal
}

// State is the running per-team projection. Each stage reads the totals
// its predecessors produced, not the raw baseline.
type State struct {
	Home float64
	Away float64
}

func (s State) Total() float64 { return s.Home + s.Away }

// Delta is one stage's contribution before the chain clamp.
type Delta struct {
	Home float64
	Away float64
	Note string
}

// StageResult is the audited, post-clamp contribution of one stage.
type StageResult struct {
	Stage string  `json:"stage"`
	Home  float64 `json:"home"`
	Away  float64 `json:"away"`
	Note  string  `json:"note,omitempty"`
}

// Adjuster is one situational stage. Apply must degrade to a zero delta on
// missing inputs rather than returning an error.
type Adjuster interface {
	Name() string
	Apply(s State, ctx *Context) Delta
}

// DefaultChain returns the production stage order. The order is a
// contract: later stages read the adjusted running totals of earlier ones.
func DefaultChain() []Adjuster {
	return []Adjuster{
		DefenseAdjuster{},
		HomeRoadAdjuster{},
		TrendAdjuster{},
		ShootoutAdjuster{},
		FatigueAdjuster{},
		ClusterAdjuster{},
	}
}

// Run applies the chain in order, clamping every stage's per-team delta to
// that stage's cap before it touches the running state. One stage's
// extreme output can therefore never be amplified by a later stage reading
// an out-of-range number.
func Run(chain []Adjuster, s State, ctx *Context) (State, []StageResult) {
	results := make([]StageResult, 0, len(chain))

	for _, adj := range chain {
		limit := StageCap(adj.Name())
		d := adj.Apply(s, ctx)

		home := Clamp(d.Home, -limit, limit)
		away := Clamp(d.Away, -limit, limit)

		s.Home += home
		s.Away += away

		results = append(results, StageResult{
			Stage: adj.Name(),
			Home:  home,
			Away:  away,
			Note:  d.Note,
		})
	}

	return s, results
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
