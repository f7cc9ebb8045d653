package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmarsh417/hoopcast/internal/adapters/inbound/scoresws"
	"github.com/dmarsh417/hoopcast/internal/adapters/outbound/clustersvc"
	"github.com/dmarsh417/hoopcast/internal/adapters/outbound/modelstore"
	"github.com/dmarsh417/hoopcast/internal/adapters/outbound/statsfeed"
	"github.com/dmarsh417/hoopcast/internal/config"
	"github.com/dmarsh417/hoopcast/internal/core/model"
	"github.com/dmarsh417/hoopcast/internal/core/pipeline"
	"github.com/dmarsh417/hoopcast/internal/core/rankings"
	"github.com/dmarsh417/hoopcast/internal/events"
	"github.com/dmarsh417/hoopcast/internal/store"
	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting hoopcast")

	bus := events.NewBus()

	// ── League constants ────────────────────────────────────────
	league, err := config.LoadLeagueConstants(cfg.LeagueConstantsPath)
	if err != nil {
		telemetry.Warnf("League constants: %v (using defaults)", err)
		league = config.DefaultLeagueConstants()
	}

	// ── Outbound clients ────────────────────────────────────────
	feed := statsfeed.NewClient(cfg.StatsFeedBaseURL, cfg.StatsFeedAPIKey, cfg.StatsFeedTimeout)
	table := rankings.NewCache(feed, 0)

	var cluster pipeline.ClusterSource
	if cfg.ClusterBaseURL != "" {
		cluster = clustersvc.NewClient(cfg.ClusterBaseURL, cfg.ClusterTimeout)
	}

	var models model.Repo
	if cfg.ModelStoreURL != "" {
		models = modelstore.NewClient(cfg.ModelStoreURL)
		telemetry.Infof("Model store: remote %s", cfg.ModelStoreURL)
	} else {
		repo, err := modelstore.NewFileRepo(cfg.ModelPath)
		if err != nil {
			telemetry.Errorf("Model store: %v", err)
			os.Exit(1)
		}
		models = repo
		telemetry.Infof("Model store: file %s", cfg.ModelPath)
	}

	// ── Prediction records ──────────────────────────────────────
	records, err := store.OpenPredictionStore(cfg.RecordStorePath)
	if err != nil {
		telemetry.Errorf("Prediction store: %v", err)
		os.Exit(1)
	}

	// ── Engine ──────────────────────────────────────────────────
	engine := pipeline.NewEngine(pipeline.Deps{
		History:       feed,
		Cluster:       cluster,
		Models:        models,
		Records:       records,
		Rankings:      table,
		League:        league,
		Bus:           bus,
		CacheCapacity: cfg.CacheCapacity,
	})
	engine.SubscribeResolutions()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm the rankings table before serving; failure just means the
	// first predictions run without archetype buckets.
	if err := table.Refresh(ctx); err != nil {
		telemetry.Warnf("Rankings warmup: %v", err)
	}

	// ── Scores feed ─────────────────────────────────────────────
	if cfg.ScoresWSURL != "" {
		ws := scoresws.NewClient(cfg.ScoresWSURL, cfg.ScoresToken, bus)
		go ws.ConnectWithRetry(ctx)
	} else {
		telemetry.Infof("Scores feed disabled; resolutions arrive via /v1/learn only")
	}

	// ── HTTP API ────────────────────────────────────────────────
	mux := http.NewServeMux()
	registerRoutes(mux, engine)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("API listening on %q", cfg.HTTPAddr)

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	records.Close()

	telemetry.Infof("Shutdown complete  predictions=%d  learns=%d  conflicts=%d  cache_hits=%d  errors=%d",
		telemetry.Metrics.PredictionsServed.Value(),
		telemetry.Metrics.LearnUpdates.Value(),
		telemetry.Metrics.ModelConflicts.Value(),
		telemetry.Metrics.CacheHits.Value(),
		telemetry.Metrics.PredictionErrors.Value(),
	)
}

type predictRequest struct {
	GameID     string   `json:"game_id,omitempty"`
	HomeTeam   string   `json:"home_team"`
	AwayTeam   string   `json:"away_team"`
	Season     string   `json:"season"`
	AsOf       string   `json:"as_of,omitempty"` // YYYY-MM-DD, default today
	MarketLine *float64 `json:"market_line,omitempty"`
}

type learnRequest struct {
	GameID     string   `json:"game_id"`
	MarketLine *float64 `json:"market_line,omitempty"`
	HomeScore  int      `json:"home_score"`
	AwayScore  int      `json:"away_score"`
}

func registerRoutes(mux *http.ServeMux, engine *pipeline.Engine) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("POST /v1/predict", func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "bad request: %v", err)
			return
		}
		if req.HomeTeam == "" || req.AwayTeam == "" || req.Season == "" {
			httpError(w, http.StatusBadRequest, "home_team, away_team, season are required")
			return
		}

		asOf := time.Now().UTC()
		if req.AsOf != "" {
			t, err := time.Parse("2006-01-02", req.AsOf)
			if err != nil {
				httpError(w, http.StatusBadRequest, "bad as_of %q", req.AsOf)
				return
			}
			asOf = t
		}

		res, err := engine.PredictTotal(r.Context(), req.HomeTeam, req.AwayTeam, req.Season, asOf)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "%v", err)
			return
		}

		if req.GameID != "" {
			if err := engine.RecordPrediction(req.GameID, res, req.MarketLine); err != nil {
				telemetry.Warnf("api: record %s: %v", req.GameID, err)
			}
		}

		writeJSON(w, res)
	})

	mux.HandleFunc("POST /v1/learn", func(w http.ResponseWriter, r *http.Request) {
		var req learnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "bad request: %v", err)
			return
		}
		if req.GameID == "" {
			httpError(w, http.StatusBadRequest, "game_id is required")
			return
		}

		out, err := engine.Learn(r.Context(), req.GameID, req.MarketLine, req.HomeScore, req.AwayScore)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, pipeline.ErrPredictionNotFound) {
				status = http.StatusNotFound
			}
			httpError(w, status, "%v", err)
			return
		}

		writeJSON(w, out)
	})

	mux.HandleFunc("GET /v1/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]int64{
			"predictions_served": telemetry.Metrics.PredictionsServed.Value(),
			"prediction_errors":  telemetry.Metrics.PredictionErrors.Value(),
			"profile_fallbacks":  telemetry.Metrics.ProfileFallbacks.Value(),
			"cluster_fallbacks":  telemetry.Metrics.ClusterFallbacks.Value(),
			"learn_updates":      telemetry.Metrics.LearnUpdates.Value(),
			"learn_errors":       telemetry.Metrics.LearnErrors.Value(),
			"model_conflicts":    telemetry.Metrics.ModelConflicts.Value(),
			"cache_hits":         telemetry.Metrics.CacheHits.Value(),
			"cache_misses":       telemetry.Metrics.CacheMisses.Value(),
			"cache_evictions":    telemetry.Metrics.CacheEvictions.Value(),
			"records_stored":     telemetry.Metrics.RecordsStored.Value(),
			"feed_messages":      telemetry.Metrics.FeedMessages.Value(),
			"feed_reconnects":    telemetry.Metrics.FeedReconnects.Value(),
			"ranking_refreshes":  telemetry.Metrics.RankingRefreshes.Value(),
			"predict_p50_ms":     telemetry.Metrics.PredictLatency.P50().Milliseconds(),
			"predict_p99_ms":     telemetry.Metrics.PredictLatency.P99().Milliseconds(),
		})
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": fmt.Sprintf(format, args...)})
}
