package projection

import (
	"math"

	"github.com/dmarsh417/hoopcast/internal/config"
	"github.com/dmarsh417/hoopcast/internal/core/history"
)

// Season/recent blend weights by trend magnitude. The three-tier policy
// keeps a single hot or cold streak from overwhelming a season-long
// baseline while still letting a genuine form change move the number.
const (
	extremeTrendPts  = 8.0
	moderateTrendPts = 3.0

	extremeRecentWeight  = 0.60 // 40/60 season/recent
	moderateRecentWeight = 0.30 // 70/30
	steadyRecentWeight   = 0.20 // 80/20
)

// ProjectBaseline blends a team's season and recent scoring rate into a
// pre-adjustment projection. Degraded profiles are pulled toward the
// league average in proportion to how thin the sample is; a missing
// profile returns the league average outright.
func ProjectBaseline(pr history.ProfileResult, league config.LeagueConstants) float64 {
	if pr.Profile == nil {
		return league.AvgPoints
	}
	p := pr.Profile

	season := p.Season.PointsPerGame

	if pr.Confidence == history.ConfidenceDegraded {
		w := float64(p.Season.Games) / float64(history.MinSample)
		return w*season + (1-w)*league.AvgPoints
	}

	// Recency blending needs a full recent window.
	if p.Recent.Games < history.MinSample {
		return season
	}

	recent := p.Recent.PointsPerGame
	if recent == season {
		// Blending equal rates must return the rate exactly; the weighted
		// form can drift by an ulp and break downstream zero checks.
		return season
	}
	delta := math.Abs(recent - season)

	var recentWeight float64
	switch {
	case delta > extremeTrendPts:
		recentWeight = extremeRecentWeight
	case delta > moderateTrendPts:
		recentWeight = moderateRecentWeight
	default:
		recentWeight = steadyRecentWeight
	}

	return (1-recentWeight)*season + recentWeight*recent
}
