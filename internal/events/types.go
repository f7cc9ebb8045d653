package events

import "time"

// PredictionMadeEvent is published after the pipeline produces a total
// projection and its record has been persisted.
type PredictionMadeEvent struct {
	GameID     string  `json:"game_id"`
	HomeTeamID string  `json:"home_team_id"`
	AwayTeamID string  `json:"away_team_id"`
	HomeScore  float64 `json:"home_score"`
	AwayScore  float64 `json:"away_score"`
	Total      float64 `json:"total"`
	LowSample  bool    `json:"low_sample,omitempty"`
}

// GameResolvedEvent is published when the scores feed reports a final.
// MarketLine is nil when the feed carries no closing line for the game.
type GameResolvedEvent struct {
	GameID     string     `json:"game_id"`
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	HomeScore  int        `json:"home_score"`
	AwayScore  int        `json:"away_score"`
	MarketLine *float64   `json:"market_line,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ModelUpdatedEvent is published after the learning engine commits a new
// model version.
type ModelUpdatedEvent struct {
	GameID      string  `json:"game_id"`
	Version     string  `json:"version"`
	ModelError  float64 `json:"model_error"`
	MarketError float64 `json:"market_error,omitempty"`
	BiasMoved   bool    `json:"bias_moved"`
}
