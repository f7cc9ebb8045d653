package statsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamHistoryParsesGameLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/games", r.URL.Path)
		assert.Equal(t, "BOS", r.URL.Query().Get("team"))
		assert.Equal(t, "2024-25", r.URL.Query().Get("season"))
		assert.Equal(t, "2025-02-10", r.URL.Query().Get("before"))
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"games": [
			{"game_id": "g1", "opponent": "Miami Heat", "date": "2025-02-01",
			 "home": true, "points_for": 114, "points_against": 108,
			 "pace": 99.5, "off_rating": 116.2, "def_rating": 110.1,
			 "three_attempts": 40, "three_makes": 15,
			 "field_goal_attempts": 90, "free_throw_attempts": 20,
			 "assists": 26, "turnovers": 12},
			{"game_id": "g2", "opponent": "LAL", "date": "not-a-date"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekrit", time.Second)
	asOf := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	records, err := c.TeamHistory(context.Background(), "BOS", "2024-25", asOf)
	require.NoError(t, err)

	// The malformed row is skipped, not fatal.
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "g1", r.GameID)
	assert.Equal(t, "BOS", r.TeamID)
	assert.Equal(t, "MIA", r.OpponentID, "feed spellings normalize to canonical ids")
	assert.True(t, r.Home)
	assert.Equal(t, 114, r.PointsFor)
	assert.InDelta(t, 99.5, r.Pace, 1e-9)
}

func TestLeagueTableParsesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rankings", r.URL.Path)
		w.Write([]byte(`{"teams": [
			{"team_id": "Boston Celtics", "def_rating": 108.2, "pace": 97.1},
			{"team_id": "MIA", "def_rating": 111.9, "pace": 100.4}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	rows, err := c.LeagueTable(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "BOS", rows[0].TeamID)
	assert.InDelta(t, 108.2, rows[0].DefRating, 1e-9)
	assert.Equal(t, "MIA", rows[1].TeamID)
}

func TestClientSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.TeamHistory(context.Background(), "BOS", "2024-25", time.Time{})
	assert.Error(t, err)
	_, err = c.LeagueTable(context.Background())
	assert.Error(t, err)
}
