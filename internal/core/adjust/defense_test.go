package adjust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmarsh417/hoopcast/internal/core/history"
	"github.com/dmarsh417/hoopcast/internal/core/projection"
	"github.com/dmarsh417/hoopcast/internal/core/rankings"
)

// Five-team table: ATL stingiest (rank 1) through EEE most generous (rank 5).
func defenseTable() *rankings.Table {
	return rankings.NewTable([]rankings.TeamRow{
		{TeamID: "ATL", DefRating: 105, Pace: 100},
		{TeamID: "BBB", DefRating: 108, Pace: 100},
		{TeamID: "CCC", DefRating: 111, Pace: 100},
		{TeamID: "DDD", DefRating: 114, Pace: 100},
		{TeamID: "EEE", DefRating: 117, Pace: 100},
	}, time.Now())
}

func defProfile(teamID string, offDelta float64, recentGames int) history.ProfileResult {
	return history.ProfileResult{
		Profile: &history.TeamProfile{
			TeamID: teamID,
			Season: history.Aggregates{Games: 20, OffRating: 110},
			Recent: history.Aggregates{Games: recentGames, OffRating: 110 + offDelta},
		},
		Confidence: history.ConfidenceOK,
	}
}

func defenseCtx(home, away history.ProfileResult, paceValue float64) *Context {
	return &Context{
		Home:     home,
		Away:     away,
		Pace:     projection.Pace{Value: paceValue},
		Rankings: defenseTable(),
	}
}

func TestDefenseShiftByRank(t *testing.T) {
	// Home faces the most generous defense (+4), away faces the
	// stingiest (-4), both at neutral form and pace 100.
	ctx := defenseCtx(defProfile("HME", 0, 5), defProfile("EEE", 0, 5), 100)
	d := DefenseAdjuster{}.Apply(State{}, ctx)
	assert.InDelta(t, 4.0, d.Home, 1e-9)

	ctx = defenseCtx(defProfile("HME", 0, 5), defProfile("ATL", 0, 5), 100)
	d = DefenseAdjuster{}.Apply(State{}, ctx)
	assert.InDelta(t, -4.0, d.Home, 1e-9)

	// Mid-table defense shifts nothing.
	ctx = defenseCtx(defProfile("HME", 0, 5), defProfile("CCC", 0, 5), 100)
	d = DefenseAdjuster{}.Apply(State{}, ctx)
	assert.InDelta(t, 0.0, d.Home, 1e-9)
}

func TestDefenseFormModulatesPenaltiesOnly(t *testing.T) {
	// Hot offense shrinks the elite-defense penalty to 30%.
	ctx := defenseCtx(defProfile("HME", 4, 5), defProfile("ATL", 0, 5), 100)
	d := DefenseAdjuster{}.Apply(State{}, ctx)
	assert.InDelta(t, -4.0*0.30, d.Home, 1e-9)

	// Cold offense amplifies it to 150%.
	ctx = defenseCtx(defProfile("HME", -4, 5), defProfile("ATL", 0, 5), 100)
	d = DefenseAdjuster{}.Apply(State{}, ctx)
	assert.InDelta(t, -4.0*1.50, d.Home, 1e-9)

	// Bonuses against weak defenses are never form-modulated.
	ctx = defenseCtx(defProfile("HME", 4, 5), defProfile("EEE", 0, 5), 100)
	d = DefenseAdjuster{}.Apply(State{}, ctx)
	assert.InDelta(t, 4.0, d.Home, 1e-9)
}

func TestDefenseScalesWithPace(t *testing.T) {
	ctx := defenseCtx(defProfile("HME", 0, 5), defProfile("EEE", 0, 5), 105)
	d := DefenseAdjuster{}.Apply(State{}, ctx)
	assert.InDelta(t, 4.0*1.05, d.Home, 1e-9)
}

func TestDefenseMissingInputs(t *testing.T) {
	// No ranking table: whole stage degrades to zero.
	d := DefenseAdjuster{}.Apply(State{}, &Context{
		Home: defProfile("HME", 0, 5),
		Away: defProfile("ATL", 0, 5),
		Pace: projection.Pace{Value: 100},
	})
	assert.Zero(t, d.Home)
	assert.Zero(t, d.Away)

	// Unranked opponent: that side shifts nothing.
	ctx := defenseCtx(defProfile("HME", 0, 5), defProfile("ZZZ", 0, 5), 100)
	d = DefenseAdjuster{}.Apply(State{}, ctx)
	assert.Zero(t, d.Home)
}
