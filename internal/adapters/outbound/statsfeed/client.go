package statsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmarsh417/hoopcast/internal/core/history"
	"github.com/dmarsh417/hoopcast/internal/core/rankings"
	"github.com/dmarsh417/hoopcast/internal/core/teams"
	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

// Client fetches team histories and league-wide rankings from the stats
// feed. It implements pipeline.HistorySource and rankings.Source.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	telemetry.Debugf("statsfeed: GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("statsfeed %s: status %d", path, resp.StatusCode)
	}
	return body, nil
}

// gameLine is the feed's box-score row for one team in one game.
type gameLine struct {
	GameID            string  `json:"game_id"`
	Opponent          string  `json:"opponent"`
	Date              string  `json:"date"` // YYYY-MM-DD
	Home              bool    `json:"home"`
	PointsFor         int     `json:"points_for"`
	PointsAgainst     int     `json:"points_against"`
	Pace              float64 `json:"pace"`
	OffRating         float64 `json:"off_rating"`
	DefRating         float64 `json:"def_rating"`
	ThreeAttempts     int     `json:"three_attempts"`
	ThreeMakes        int     `json:"three_makes"`
	FieldGoalAttempts int     `json:"field_goal_attempts"`
	FreeThrowAttempts int     `json:"free_throw_attempts"`
	Assists           int     `json:"assists"`
	Turnovers         int     `json:"turnovers"`
}

// TeamHistory fetches a team's season-to-date game log. Rows after asOf
// are filtered feed-side, but the profile builder re-filters anyway.
func (c *Client) TeamHistory(ctx context.Context, teamID, season string, asOf time.Time) ([]history.ContestRecord, error) {
	query := url.Values{
		"team":   {teamID},
		"season": {season},
	}
	if !asOf.IsZero() {
		query.Set("before", asOf.UTC().Format("2006-01-02"))
	}

	body, err := c.get(ctx, "/v1/games", query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Games []gameLine `json:"games"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse team history: %w", err)
	}

	records := make([]history.ContestRecord, 0, len(payload.Games))
	for _, g := range payload.Games {
		date, err := time.Parse("2006-01-02", g.Date)
		if err != nil {
			telemetry.Warnf("statsfeed: bad date %q for game %s, skipping", g.Date, g.GameID)
			continue
		}
		records = append(records, history.ContestRecord{
			GameID:            g.GameID,
			TeamID:            teamID,
			OpponentID:        teams.Normalize(g.Opponent),
			Season:            season,
			Date:              date,
			Home:              g.Home,
			PointsFor:         g.PointsFor,
			PointsAgainst:     g.PointsAgainst,
			Pace:              g.Pace,
			OffRating:         g.OffRating,
			DefRating:         g.DefRating,
			ThreeAttempts:     g.ThreeAttempts,
			ThreeMakes:        g.ThreeMakes,
			FieldGoalAttempts: g.FieldGoalAttempts,
			FreeThrowAttempts: g.FreeThrowAttempts,
			Assists:           g.Assists,
			Turnovers:         g.Turnovers,
		})
	}
	return records, nil
}

// LeagueTable fetches every team's current defensive rating and pace.
// Implements rankings.Source.
func (c *Client) LeagueTable(ctx context.Context) ([]rankings.TeamRow, error) {
	body, err := c.get(ctx, "/v1/rankings", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Teams []struct {
			TeamID    string  `json:"team_id"`
			DefRating float64 `json:"def_rating"`
			Pace      float64 `json:"pace"`
		} `json:"teams"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse league table: %w", err)
	}

	rows := make([]rankings.TeamRow, 0, len(payload.Teams))
	for _, t := range payload.Teams {
		rows = append(rows, rankings.TeamRow{
			TeamID:    teams.Normalize(t.TeamID),
			DefRating: t.DefRating,
			Pace:      t.Pace,
		})
	}
	return rows, nil
}
