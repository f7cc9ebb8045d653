package pipeline

import (
	"time"

	"github.com/dmarsh417/hoopcast/internal/core/adjust"
	"github.com/dmarsh417/hoopcast/internal/core/feature"
	"github.com/dmarsh417/hoopcast/internal/core/projection"
)

// PredictionResult is the complete output of one pipeline run: final
// scores plus the full audited path that produced them. It is either
// fully populated or the run returned a typed error; no partials.
type PredictionResult struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Season   string `json:"season"`

	BaselineHome float64         `json:"baseline_home"`
	BaselineAway float64         `json:"baseline_away"`
	Pace         projection.Pace `json:"pace"`

	// Stages is the ordered post-clamp breakdown, one row per adjuster.
	Stages []adjust.StageResult `json:"stages"`

	// Correction is the learned linear correction plus market bias,
	// already folded into the final scores (split evenly).
	Correction   float64 `json:"correction"`
	ModelVersion string  `json:"model_version"`

	HomeScore float64 `json:"home_score"`
	AwayScore float64 `json:"away_score"`
	Total     float64 `json:"total"`

	// Features is the vector captured for this run. The learner replays
	// it verbatim; it is never rebuilt after the fact.
	Features feature.Vector `json:"features"`

	// Flags lists data-quality degradations (thin profiles, missing
	// rankings, cluster fallback). Empty means a clean run.
	Flags []string `json:"flags,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Degraded reports whether any input fell back during the run.
func (r *PredictionResult) Degraded() bool { return len(r.Flags) > 0 }
