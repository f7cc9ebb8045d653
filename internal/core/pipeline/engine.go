package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmarsh417/hoopcast/internal/config"
	"github.com/dmarsh417/hoopcast/internal/core/adjust"
	"github.com/dmarsh417/hoopcast/internal/core/feature"
	"github.com/dmarsh417/hoopcast/internal/core/history"
	"github.com/dmarsh417/hoopcast/internal/core/model"
	"github.com/dmarsh417/hoopcast/internal/core/projection"
	"github.com/dmarsh417/hoopcast/internal/core/rankings"
	"github.com/dmarsh417/hoopcast/internal/core/teams"
	"github.com/dmarsh417/hoopcast/internal/events"
	"github.com/dmarsh417/hoopcast/internal/store"
	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

var (
	// ErrInsufficientData means neither team has any usable history; a
	// league-average guess for both sides would be noise, not a prediction.
	ErrInsufficientData = errors.New("insufficient data for prediction")

	// ErrPredictionNotFound means Learn was called for a game that was
	// never recorded. Learning without the captured vector is forbidden.
	ErrPredictionNotFound = errors.New("no recorded prediction for game")
)

// maxSaveAttempts bounds the load-learn-save cycles one Learn call may
// run when concurrent learners keep invalidating its snapshot.
const maxSaveAttempts = 3

// HistorySource serves a team's contest history, typically the stats feed.
type HistorySource interface {
	TeamHistory(ctx context.Context, teamID, season string, asOf time.Time) ([]history.ContestRecord, error)
}

// ClusterSource serves the opaque pairing adjustment from the clustering
// service. Optional; a nil source or any error degrades to no signal.
type ClusterSource interface {
	ClusterAdjustment(ctx context.Context, homeID, awayID string) (*adjust.ClusterSignal, error)
}

// RecordStore persists served predictions for later resolution and replay.
type RecordStore interface {
	Insert(r *store.PredictionRecord) (int64, error)
	BackfillResolution(gameID string, actualHome, actualAway int, resolvedAt time.Time) error
	GetByGameID(gameID string) (*store.PredictionRecord, error)
}

// RankingsProvider serves the current league table snapshot, nil before
// the first successful refresh.
type RankingsProvider interface {
	Current(ctx context.Context) *rankings.Table
}

// LearningOutcome summarizes one committed learning step.
type LearningOutcome = model.Outcome

// Deps wires the engine. Cluster and Bus may be nil; everything else is
// required.
type Deps struct {
	History  HistorySource
	Cluster  ClusterSource
	Models   model.Repo
	Records  RecordStore
	Rankings RankingsProvider
	League   config.LeagueConstants
	Bus      *events.Bus

	CacheCapacity int
}

// Engine runs the full projection pipeline and the learning loop. It is
// safe for concurrent use: predictions are pure given their inputs, and
// model writes serialize at the repository's version compare-and-swap.
type Engine struct {
	history  HistorySource
	cluster  ClusterSource
	models   model.Repo
	records  RecordStore
	rankings RankingsProvider
	league   config.LeagueConstants
	bus      *events.Bus

	chain []adjust.Adjuster
	memo  *memoCache
}

func NewEngine(d Deps) *Engine {
	return &Engine{
		history:  d.History,
		cluster:  d.Cluster,
		models:   d.Models,
		records:  d.Records,
		rankings: d.Rankings,
		league:   d.League,
		bus:      d.Bus,
		chain:    adjust.DefaultChain(),
		memo:     newMemoCache(d.CacheCapacity),
	}
}

// PredictTotal runs the pipeline for one pairing as of a cutoff date.
// The only fatal condition is both teams missing from history; every
// other degradation lands in the result's Flags.
func (e *Engine) PredictTotal(ctx context.Context, homeID, awayID, season string, asOf time.Time) (*PredictionResult, error) {
	start := time.Now()
	homeID = teams.Normalize(homeID)
	awayID = teams.Normalize(awayID)

	key := fmt.Sprintf("%s|%s|%s|%s", homeID, awayID, season, asOf.UTC().Format("2006-01-02"))
	if res, ok := e.memo.get(key); ok {
		return res, nil
	}

	var homeRecords, awayRecords []history.ContestRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		homeRecords = e.fetchHistory(gctx, homeID, season, asOf)
		return nil
	})
	g.Go(func() error {
		awayRecords = e.fetchHistory(gctx, awayID, season, asOf)
		return nil
	})
	_ = g.Wait()

	homeProfile := history.BuildTeamProfile(homeID, season, homeRecords, asOf)
	awayProfile := history.BuildTeamProfile(awayID, season, awayRecords, asOf)

	if !homeProfile.Usable() && !awayProfile.Usable() {
		telemetry.Metrics.PredictionErrors.Inc()
		return nil, fmt.Errorf("%s at %s: %w", awayID, homeID, ErrInsufficientData)
	}

	var flags []string
	flags = appendProfileFlag(flags, "home", homeProfile)
	flags = appendProfileFlag(flags, "away", awayProfile)

	table := e.rankings.Current(ctx)
	if table == nil {
		flags = append(flags, "rankings unavailable")
	}

	homeMatchup := history.BuildMatchupProfile(homeID, awayID, homeRecords, table)
	awayMatchup := history.BuildMatchupProfile(awayID, homeID, awayRecords, table)

	baseHome := projection.ProjectBaseline(homeProfile, e.league)
	baseAway := projection.ProjectBaseline(awayProfile, e.league)
	pace := projection.ProjectPace(homeProfile, awayProfile, e.league)

	vec := e.buildVector(table, homeID, awayID, homeProfile, awayProfile, homeMatchup, awayMatchup)

	signal, clusterFlag := e.clusterSignal(ctx, homeID, awayID)
	if clusterFlag != "" {
		flags = append(flags, clusterFlag)
	}

	state, stages := adjust.Run(e.chain, adjust.State{Home: baseHome, Away: baseAway}, &adjust.Context{
		GameDate:    asOf,
		Home:        homeProfile,
		Away:        awayProfile,
		HomeMatchup: homeMatchup,
		AwayMatchup: awayMatchup,
		Pace:        pace,
		League:      e.league,
		Rankings:    table,
		Cluster:     signal,
	})

	m, err := model.LoadOrInit(ctx, e.models)
	if err != nil {
		telemetry.Warnf("pipeline: model unavailable, correcting with fresh weights: %v", err)
		flags = append(flags, "stale model")
		m = model.New()
	}

	correction := feature.Correct(vec, m.FeatureWeights) + m.Parameters.MarketBias
	final := adjust.State{
		Home: state.Home + correction/2,
		Away: state.Away + correction/2,
	}

	res := &PredictionResult{
		HomeTeam:     homeID,
		AwayTeam:     awayID,
		Season:       season,
		BaselineHome: baseHome,
		BaselineAway: baseAway,
		Pace:         pace,
		Stages:       stages,
		Correction:   correction,
		ModelVersion: m.Version,
		HomeScore:    final.Home,
		AwayScore:    final.Away,
		Total:        final.Total(),
		Features:     vec,
		Flags:        flags,
		GeneratedAt:  time.Now().UTC(),
	}

	e.memo.put(key, res)
	telemetry.Metrics.PredictionsServed.Inc()
	telemetry.Metrics.PredictLatency.Record(time.Since(start))
	telemetry.Infof("pipeline: %s at %s -> %.1f (home %.1f, away %.1f, flags %d)",
		awayID, homeID, res.Total, res.HomeScore, res.AwayScore, len(flags))

	return res, nil
}

// RecordPrediction persists a served prediction under a game id so the
// learning loop can resolve it later, then announces it on the bus.
func (e *Engine) RecordPrediction(gameID string, res *PredictionResult, marketLine *float64) error {
	rec := &store.PredictionRecord{
		GameID:         gameID,
		Season:         res.Season,
		HomeTeam:       res.HomeTeam,
		AwayTeam:       res.AwayTeam,
		PredictedHome:  res.HomeScore,
		PredictedAway:  res.AwayScore,
		PredictedTotal: res.Total,
		MarketLine:     marketLine,
		ModelVersion:   res.ModelVersion,
		Features:       res.Features,
		DataQuality:    joinFlags(res.Flags),
		PredictedAt:    res.GeneratedAt,
	}

	if _, err := e.records.Insert(rec); err != nil {
		return fmt.Errorf("record prediction %s: %w", gameID, err)
	}

	e.publish(events.EventPredictionMade, res.Season, gameID, events.PredictionMadeEvent{
		GameID:     gameID,
		HomeTeamID: res.HomeTeam,
		AwayTeamID: res.AwayTeam,
		HomeScore:  res.HomeScore,
		AwayScore:  res.AwayScore,
		Total:      res.Total,
		LowSample:  res.Degraded(),
	})
	return nil
}

// Learn resolves a recorded prediction against the final score and
// commits one bounded model update. Stale snapshots retry the load-learn-
// save cycle; the same resolved game applied twice moves the model twice,
// so callers dispatch each resolution exactly once.
func (e *Engine) Learn(ctx context.Context, gameID string, marketLine *float64, actualHome, actualAway int) (*LearningOutcome, error) {
	start := time.Now()

	rec, err := e.records.GetByGameID(gameID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %s: %w", gameID, ErrPredictionNotFound)
		}
		return nil, err
	}

	if err := e.records.BackfillResolution(gameID, actualHome, actualAway, time.Now().UTC()); err != nil {
		telemetry.Warnf("pipeline: backfill %s: %v", gameID, err)
	}

	line := marketLine
	if line == nil {
		line = rec.MarketLine
	}

	var out model.Outcome
	for attempt := 1; ; attempt++ {
		m, err := model.LoadOrInit(ctx, e.models)
		if err != nil {
			telemetry.Metrics.LearnErrors.Inc()
			return nil, fmt.Errorf("load model: %w", err)
		}

		var next model.RatingModel
		next, out = model.Learn(m, gameID, rec.HomeTeam, rec.AwayTeam,
			rec.Features, rec.PredictedTotal, line, actualHome, actualAway)

		// A perfect prediction leaves the model untouched; nothing to save.
		if next.Version == m.Version {
			telemetry.Debugf("pipeline: learn %s: zero error, model unchanged", gameID)
			return &out, nil
		}

		if _, err := e.models.Save(ctx, next, m.Version); err != nil {
			if errors.Is(err, model.ErrVersionConflict) && attempt < maxSaveAttempts {
				telemetry.Debugf("pipeline: learn %s: stale snapshot, retrying", gameID)
				continue
			}
			telemetry.Metrics.LearnErrors.Inc()
			return nil, fmt.Errorf("save model: %w", err)
		}
		break
	}

	telemetry.Metrics.LearnUpdates.Inc()
	telemetry.Metrics.LearnLatency.Record(time.Since(start))
	telemetry.Infof("pipeline: learned from %s (error %+.1f, version %s)",
		gameID, out.ModelError, out.NewVersion)

	e.publish(events.EventModelUpdated, rec.Season, gameID, events.ModelUpdatedEvent{
		GameID:      gameID,
		Version:     out.NewVersion,
		ModelError:  out.ModelError,
		MarketError: out.MarketError,
		BiasMoved:   out.BiasMoved,
	})
	return &out, nil
}

// SubscribeResolutions wires the learning loop to the scores feed: every
// GameResolved event triggers a Learn for games we predicted. Games we
// never recorded are skipped quietly.
func (e *Engine) SubscribeResolutions() {
	if e.bus == nil {
		return
	}
	e.bus.Subscribe(events.EventGameResolved, func(ev events.Event) error {
		payload, ok := ev.Payload.(events.GameResolvedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", ev.Payload, ev.Type)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err := e.Learn(ctx, payload.GameID, payload.MarketLine, payload.HomeScore, payload.AwayScore)
		if errors.Is(err, ErrPredictionNotFound) {
			telemetry.Debugf("pipeline: resolved %s was never predicted, skipping", payload.GameID)
			return nil
		}
		return err
	})
}

// fetchHistory degrades feed failures to an empty record set. The profile
// builder tags the result Missing and the baseline falls back to league
// constants; a flaky feed must not fail the request outright.
func (e *Engine) fetchHistory(ctx context.Context, teamID, season string, asOf time.Time) []history.ContestRecord {
	start := time.Now()
	records, err := e.history.TeamHistory(ctx, teamID, season, asOf)
	telemetry.Metrics.HistoryLatency.Record(time.Since(start))
	if err != nil {
		telemetry.Metrics.ProfileFallbacks.Inc()
		telemetry.Warnf("pipeline: history for %s unavailable: %v", teamID, err)
		return nil
	}
	return records
}

func (e *Engine) clusterSignal(ctx context.Context, homeID, awayID string) (*adjust.ClusterSignal, string) {
	if e.cluster == nil {
		return nil, ""
	}
	signal, err := e.cluster.ClusterAdjustment(ctx, homeID, awayID)
	if err != nil {
		telemetry.Metrics.ClusterFallbacks.Inc()
		telemetry.Warnf("pipeline: cluster signal unavailable: %v", err)
		return nil, "cluster unavailable"
	}
	return signal, ""
}

func (e *Engine) buildVector(table *rankings.Table, homeID, awayID string, homeProfile, awayProfile history.ProfileResult, homeMatchup, awayMatchup *history.MatchupProfile) feature.Vector {
	var (
		homeOppPace history.PaceTier
		homeOppDef  history.DefenseTier
		awayOppPace history.PaceTier
		awayOppDef  history.DefenseTier
	)
	if table != nil {
		homeOppPace, homeOppDef, _ = table.Tiers(awayID, time.Time{})
		awayOppPace, awayOppDef, _ = table.Tiers(homeID, time.Time{})
	}

	return feature.Build(
		feature.Inputs{
			Profile:     homeProfile.Profile,
			Matchup:     homeMatchup,
			OppDefTier:  homeOppDef,
			OppPaceTier: homeOppPace,
		},
		feature.Inputs{
			Profile:     awayProfile.Profile,
			Matchup:     awayMatchup,
			OppDefTier:  awayOppDef,
			OppPaceTier: awayOppPace,
		},
	)
}

func (e *Engine) publish(t events.EventType, season, gameID string, payload any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.Event{
		ID:        uuid.NewString(),
		Type:      t,
		Season:    season,
		GameID:    gameID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

func appendProfileFlag(flags []string, side string, pr history.ProfileResult) []string {
	switch pr.Confidence {
	case history.ConfidenceMissing:
		telemetry.Metrics.ProfileFallbacks.Inc()
		return append(flags, side+" profile missing")
	case history.ConfidenceDegraded:
		return append(flags, side+" profile degraded: "+pr.Reason)
	}
	return flags
}

func joinFlags(flags []string) string {
	return strings.Join(flags, "; ")
}
