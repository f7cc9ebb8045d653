package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarsh417/hoopcast/internal/core/feature"
)

// Hard bounds on every learned parameter. Clamped on every update — a
// long unlucky stretch can pin a rating at the bound but never past it.
const (
	RatingBound        = 20.0
	MarketBiasBound    = 5.0
	FeatureWeightBound = 10.0
)

type Parameters struct {
	Base                float64 `json:"base"`
	HomeCourtConstant   float64 `json:"home_court_constant"`
	LearningRate        float64 `json:"learning_rate"`
	MarketLearningRate  float64 `json:"market_learning_rate"`
	FeatureLearningRate float64 `json:"feature_learning_rate"`
	MarketBias          float64 `json:"market_bias"`
}

type TeamRating struct {
	OffenseRating float64 `json:"offense_rating"`
	DefenseRating float64 `json:"defense_rating"`
}

// RatingModel is the single persisted parameter set. It is a value:
// the learner clones it, mutates the clone, and saves the whole object.
// Nothing ever writes individual fields in place.
type RatingModel struct {
	Version        string                `json:"version"`
	Parameters     Parameters            `json:"parameters"`
	Teams          map[string]TeamRating `json:"teams"`
	FeatureWeights map[string]float64    `json:"feature_weights"`
	LastUpdated    time.Time             `json:"last_updated"`
}

// New creates the initial model: all ratings zero, feature weights zero
// for every canonical feature name.
func New() RatingModel {
	weights := make(map[string]float64, len(feature.Names()))
	for _, name := range feature.Names() {
		weights[name] = 0
	}

	return RatingModel{
		Version: uuid.NewString(),
		Parameters: Parameters{
			Base:                111.0,
			HomeCourtConstant:   1.5,
			LearningRate:        0.05,
			MarketLearningRate:  0.02,
			FeatureLearningRate: 0.001,
			MarketBias:          0,
		},
		Teams:          make(map[string]TeamRating),
		FeatureWeights: weights,
		LastUpdated:    time.Now().UTC(),
	}
}

// Clone deep-copies the model so updates never alias the loaded snapshot.
func (m RatingModel) Clone() RatingModel {
	out := m
	out.Teams = make(map[string]TeamRating, len(m.Teams))
	for id, r := range m.Teams {
		out.Teams[id] = r
	}
	out.FeatureWeights = make(map[string]float64, len(m.FeatureWeights))
	for name, w := range m.FeatureWeights {
		out.FeatureWeights[name] = w
	}
	return out
}

// Team returns a team's ratings, zero-valued for unknown teams.
func (m RatingModel) Team(id string) TeamRating {
	return m.Teams[id]
}

// Predict computes the model-only score line for a pairing:
// base + home court (home side only) + own offense − opponent defense.
func (m RatingModel) Predict(homeID, awayID string) (homeScore, awayScore, total float64) {
	home := m.Team(homeID)
	away := m.Team(awayID)

	homeScore = m.Parameters.Base + m.Parameters.HomeCourtConstant + home.OffenseRating - away.DefenseRating
	awayScore = m.Parameters.Base + away.OffenseRating - home.DefenseRating
	return homeScore, awayScore, homeScore + awayScore
}

func clamp(v, bound float64) float64 {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}
