package rankings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarsh417/hoopcast/internal/core/history"
)

func sixTeamRows() []TeamRow {
	return []TeamRow{
		{TeamID: "AAA", DefRating: 104, Pace: 95},
		{TeamID: "BBB", DefRating: 106, Pace: 99},
		{TeamID: "CCC", DefRating: 109, Pace: 100},
		{TeamID: "DDD", DefRating: 111, Pace: 101},
		{TeamID: "EEE", DefRating: 114, Pace: 102},
		{TeamID: "FFF", DefRating: 117, Pace: 106},
	}
}

func TestDefenseRank(t *testing.T) {
	table := NewTable(sixTeamRows(), time.Now())

	rank, of, ok := table.DefenseRank("AAA")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	assert.Equal(t, 6, of)

	rank, _, _ = table.DefenseRank("FFF")
	assert.Equal(t, 6, rank)

	_, _, ok = table.DefenseRank("ZZZ")
	assert.False(t, ok)
}

func TestTiersByThirds(t *testing.T) {
	table := NewTable(sixTeamRows(), time.Now())

	tests := []struct {
		teamID   string
		wantPace history.PaceTier
		wantDef  history.DefenseTier
	}{
		{"AAA", history.PaceSlow, history.DefenseElite},
		{"BBB", history.PaceNeutral, history.DefenseElite},
		{"CCC", history.PaceNeutral, history.DefenseAverage},
		{"DDD", history.PaceNeutral, history.DefenseAverage}, // pace 101 is the boundary
		{"EEE", history.PaceFast, history.DefenseWeak},
		{"FFF", history.PaceFast, history.DefenseWeak},
	}
	for _, tt := range tests {
		pace, def, ok := table.Tiers(tt.teamID, time.Now())
		require.True(t, ok, tt.teamID)
		assert.Equal(t, tt.wantPace, pace, tt.teamID)
		assert.Equal(t, tt.wantDef, def, tt.teamID)
	}

	_, _, ok := table.Tiers("ZZZ", time.Now())
	assert.False(t, ok)
}

func TestNilTableIsSafe(t *testing.T) {
	var table *Table
	_, _, ok := table.DefenseRank("AAA")
	assert.False(t, ok)
	_, _, ok = table.Tiers("AAA", time.Now())
	assert.False(t, ok)
}
