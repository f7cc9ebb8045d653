package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LeagueConstants are the league-wide averages every fallback path blends
// toward when a team's sample is too thin to trust.
type LeagueConstants struct {
	AvgPoints        float64 `yaml:"avg_points"`
	AvgPace          float64 `yaml:"avg_pace"`
	AvgOffRating     float64 `yaml:"avg_off_rating"`
	AvgDefRating     float64 `yaml:"avg_def_rating"`
	AvgThreeRate     float64 `yaml:"avg_three_rate"`
	AvgThreePct      float64 `yaml:"avg_three_pct"`
	AvgFreeThrowRate float64 `yaml:"avg_free_throw_rate"`
	TeamCount        int     `yaml:"team_count"`
}

// DefaultLeagueConstants are the hardcoded fallback when no yaml file is
// present. Values track recent NBA league-wide averages.
func DefaultLeagueConstants() LeagueConstants {
	return LeagueConstants{
		AvgPoints:        112.0,
		AvgPace:          99.0,
		AvgOffRating:     113.0,
		AvgDefRating:     113.0,
		AvgThreeRate:     0.39,
		AvgThreePct:      0.36,
		AvgFreeThrowRate: 0.26,
		TeamCount:        30,
	}
}

func LoadLeagueConstants(path string) (LeagueConstants, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LeagueConstants{}, fmt.Errorf("read league constants: %w", err)
	}

	lc := DefaultLeagueConstants()
	if err := yaml.Unmarshal(data, &lc); err != nil {
		return LeagueConstants{}, fmt.Errorf("parse league constants: %w", err)
	}

	return lc, nil
}
