package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmarsh417/hoopcast/internal/config"
	"github.com/dmarsh417/hoopcast/internal/core/history"
)

func paceProfile(seasonPace, recentPace float64, recentGames int) history.ProfileResult {
	return history.ProfileResult{
		Profile: &history.TeamProfile{
			Season: history.Aggregates{Games: 20, Pace: seasonPace},
			Recent: history.Aggregates{Games: recentGames, Pace: recentPace},
		},
		Confidence: history.ConfidenceOK,
	}
}

func TestProjectPaceBlend(t *testing.T) {
	home := paceProfile(100, 105, 5) // 0.4*100 + 0.6*105 = 103
	away := paceProfile(95, 95, 5)   // 95

	p := ProjectPace(home, away, config.DefaultLeagueConstants())
	assert.InDelta(t, 0.52*103+0.48*95, p.Value, 1e-9)
	assert.Equal(t, PaceTagNormal, p.Tag)
}

func TestProjectPaceTags(t *testing.T) {
	league := config.DefaultLeagueConstants()

	fast := ProjectPace(paceProfile(104, 104, 5), paceProfile(104, 104, 5), league)
	assert.Equal(t, PaceTagFast, fast.Tag)

	slow := ProjectPace(paceProfile(94, 94, 5), paceProfile(94, 94, 5), league)
	assert.Equal(t, PaceTagSlow, slow.Tag)

	// Boundary values stay normal: the tags need strict crossings.
	edge := ProjectPace(paceProfile(101, 101, 5), paceProfile(101, 101, 5), league)
	assert.Equal(t, PaceTagNormal, edge.Tag)
}

func TestProjectPaceFallbacks(t *testing.T) {
	league := config.DefaultLeagueConstants()

	// Missing profiles contribute the league-average pace.
	p := ProjectPace(history.ProfileResult{}, history.ProfileResult{}, league)
	assert.InDelta(t, league.AvgPace, p.Value, 1e-9)

	// No recent games: season pace stands alone.
	noRecent := paceProfile(98, 0, 0)
	p = ProjectPace(noRecent, noRecent, league)
	assert.InDelta(t, 98.0, p.Value, 1e-9)
}

func TestPaceMultiplier(t *testing.T) {
	assert.InDelta(t, 1.0, Pace{Value: 100}.Multiplier(), 1e-9)
	assert.InDelta(t, 0.96, Pace{Value: 96}.Multiplier(), 1e-9)
	assert.InDelta(t, 1.05, Pace{Value: 105}.Multiplier(), 1e-9)
}
