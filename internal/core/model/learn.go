package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Outcome summarizes one learning step for callers and the audit log.
type Outcome struct {
	GameID         string   `json:"game_id"`
	PredictedTotal float64  `json:"predicted_total"`
	ActualTotal    float64  `json:"actual_total"`
	ModelError     float64  `json:"model_error"`
	MarketLine     *float64 `json:"market_line,omitempty"`
	MarketError    float64  `json:"market_error,omitempty"`
	MarketCloser   bool     `json:"market_closer"`
	BiasMoved      bool     `json:"bias_moved"`
	NewVersion     string   `json:"new_version"`
}

// Learn applies one bounded online update from a resolved game. The input
// model is a single consistent snapshot; the returned model is a fully
// rebuilt value carrying a fresh version. A perfect prediction returns
// the input unchanged — zero error must not drift the model.
//
// The captured feature vector from prediction time must be passed in;
// rebuilding one from current profiles would desynchronize learning from
// what the pipeline actually saw.
func Learn(m RatingModel, gameID, homeID, awayID string, vec map[string]float64, predictedTotal float64, marketLine *float64, actualHome, actualAway int) (RatingModel, Outcome) {
	actualTotal := float64(actualHome + actualAway)
	modelError := actualTotal - predictedTotal

	out := Outcome{
		GameID:         gameID,
		PredictedTotal: predictedTotal,
		ActualTotal:    actualTotal,
		ModelError:     modelError,
		MarketLine:     marketLine,
	}

	if marketLine != nil {
		out.MarketError = actualTotal - *marketLine
		out.MarketCloser = math.Abs(out.MarketError) < math.Abs(modelError)
	}

	// Zero error means every update below is a no-op; skip the rewrite so
	// replaying a perfect prediction leaves the model bit-identical.
	// The market-bias step also cannot fire: |marketError| < 0 is impossible.
	if modelError == 0 {
		out.NewVersion = m.Version
		return m, out
	}

	next := m.Clone()
	step := next.Parameters.LearningRate * modelError

	// Gradient step on the total: offense raises it, defense lowers it.
	for _, id := range []string{homeID, awayID} {
		r := next.Teams[id]
		r.OffenseRating = clamp(r.OffenseRating+step, RatingBound)
		r.DefenseRating = clamp(r.DefenseRating-step, RatingBound)
		next.Teams[id] = r
	}

	// Trust the market only when it beat us on this game: pull the bias
	// toward the gap between its line and our number.
	if out.MarketCloser {
		gap := *marketLine - predictedTotal
		biased := next.Parameters.MarketBias + next.Parameters.MarketLearningRate*gap
		next.Parameters.MarketBias = clamp(biased, MarketBiasBound)
		out.BiasMoved = next.Parameters.MarketBias != m.Parameters.MarketBias
	}

	for name, value := range vec {
		w := next.FeatureWeights[name] + next.Parameters.FeatureLearningRate*modelError*value
		next.FeatureWeights[name] = clamp(w, FeatureWeightBound)
	}

	next.Version = uuid.NewString()
	next.LastUpdated = time.Now().UTC()
	out.NewVersion = next.Version

	return next, out
}
