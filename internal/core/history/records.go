package history

import "time"

// ContestRecord is one team's box-score line for one finished game, as
// returned by the stats feed. The profile builder consumes slices of these;
// nothing in this package mutates them.
type ContestRecord struct {
	GameID     string    `json:"game_id"`
	TeamID     string    `json:"team_id"`
	OpponentID string    `json:"opponent_id"`
	Season     string    `json:"season"`
	Date       time.Time `json:"date"`
	Home       bool      `json:"home"`

	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`

	// Per-100-possession efficiency and tempo from the provider.
	Pace      float64 `json:"pace"`
	OffRating float64 `json:"off_rating"`
	DefRating float64 `json:"def_rating"`

	ThreeAttempts     int `json:"three_attempts"`
	ThreeMakes        int `json:"three_makes"`
	FieldGoalAttempts int `json:"field_goal_attempts"`
	FreeThrowAttempts int `json:"free_throw_attempts"`
	Assists           int `json:"assists"`
	Turnovers         int `json:"turnovers"`
}

// Total returns the combined score of the game from this team's line.
func (r ContestRecord) Total() int {
	return r.PointsFor + r.PointsAgainst
}

// sortByDateAsc orders records oldest-first without mutating the input.
func sortByDateAsc(records []ContestRecord) []ContestRecord {
	out := make([]ContestRecord, len(records))
	copy(out, records)
	for i := 1; i < len(out); i++ {
		key := out[i]
		j := i - 1
		for j >= 0 && out[j].Date.After(key.Date) {
			out[j+1] = out[j]
			j--
		}
		out[j+1] = key
	}
	return out
}
