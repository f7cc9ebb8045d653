package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func testRecord(teamID, oppID string, d int, home bool, pf, pa int) ContestRecord {
	return ContestRecord{
		GameID:            "g" + teamID + day(d).Format("0102"),
		TeamID:            teamID,
		OpponentID:        oppID,
		Season:            "2024-25",
		Date:              day(d),
		Home:              home,
		PointsFor:         pf,
		PointsAgainst:     pa,
		Pace:              100,
		OffRating:         110,
		DefRating:         112,
		ThreeAttempts:     35,
		ThreeMakes:        13,
		FieldGoalAttempts: 88,
		FreeThrowAttempts: 22,
		Assists:           25,
		Turnovers:         13,
	}
}

func TestBuildTeamProfileMissing(t *testing.T) {
	pr := BuildTeamProfile("BOS", "2024-25", nil, day(30))
	assert.Equal(t, ConfidenceMissing, pr.Confidence)
	assert.Nil(t, pr.Profile)
	assert.False(t, pr.Usable())
}

func TestBuildTeamProfileIgnoresOtherTeams(t *testing.T) {
	records := []ContestRecord{
		testRecord("LAL", "BOS", 1, true, 120, 110),
		testRecord("MIA", "BOS", 2, true, 115, 100),
	}
	pr := BuildTeamProfile("BOS", "2024-25", records, day(30))
	assert.Equal(t, ConfidenceMissing, pr.Confidence)
}

func TestBuildTeamProfileCutoffIsStrict(t *testing.T) {
	records := []ContestRecord{
		testRecord("BOS", "LAL", 1, true, 110, 100),
		testRecord("BOS", "MIA", 5, true, 120, 100), // on the cutoff day
	}
	pr := BuildTeamProfile("BOS", "2024-25", records, day(5))
	require.NotNil(t, pr.Profile)
	assert.Equal(t, 1, pr.Profile.Season.Games)
	assert.Equal(t, 110.0, pr.Profile.Season.PointsPerGame)
}

func TestBuildTeamProfileDegradedBelowMinSample(t *testing.T) {
	records := []ContestRecord{
		testRecord("BOS", "LAL", 1, true, 110, 100),
		testRecord("BOS", "MIA", 2, false, 114, 102),
		testRecord("BOS", "NYK", 3, true, 118, 104),
	}
	pr := BuildTeamProfile("BOS", "2024-25", records, day(30))
	require.NotNil(t, pr.Profile)
	assert.Equal(t, ConfidenceDegraded, pr.Confidence)
	assert.NotEmpty(t, pr.Reason)
	assert.True(t, pr.Usable())
	assert.Equal(t, 3, pr.Profile.Season.Games)
}

func TestBuildTeamProfileWindows(t *testing.T) {
	var records []ContestRecord
	// 10 games: first five score 100, last five score 120.
	for i := 0; i < 10; i++ {
		pf := 100
		if i >= 5 {
			pf = 120
		}
		records = append(records, testRecord("BOS", "LAL", i*2, i%2 == 0, pf, 105))
	}

	pr := BuildTeamProfile("BOS", "2024-25", records, day(30))
	require.Equal(t, ConfidenceOK, pr.Confidence)
	p := pr.Profile

	assert.Equal(t, 10, p.Season.Games)
	assert.InDelta(t, 110.0, p.Season.PointsPerGame, 1e-9)

	assert.Equal(t, RecentWindow, p.Recent.Games)
	assert.InDelta(t, 120.0, p.Recent.PointsPerGame, 1e-9)

	assert.Equal(t, 5, p.Home.Games)
	assert.Equal(t, 5, p.Away.Games)

	require.Len(t, p.LastGames, RecentWindow)
	// Newest first.
	assert.Equal(t, day(18), p.LastGames[0].Date)
	assert.True(t, p.LastGames[0].Date.After(p.LastGames[1].Date))
}

func TestAggregateRates(t *testing.T) {
	r := testRecord("BOS", "LAL", 1, true, 110, 100)
	agg := aggregate([]ContestRecord{r})

	assert.InDelta(t, float64(r.ThreeAttempts)/float64(r.FieldGoalAttempts), agg.ThreeRate, 1e-9)
	assert.InDelta(t, float64(r.ThreeMakes)/float64(r.ThreeAttempts), agg.ThreePct, 1e-9)
	assert.InDelta(t, float64(r.FreeThrowAttempts)/float64(r.FieldGoalAttempts), agg.FreeThrowRate, 1e-9)
	assert.InDelta(t, float64(r.Assists)/float64(r.FieldGoalAttempts), agg.AssistRate, 1e-9)
	assert.InDelta(t, float64(r.Turnovers)/float64(r.FieldGoalAttempts), agg.TurnoverRate, 1e-9)
}
