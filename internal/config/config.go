package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Stats feed (team history provider)
	StatsFeedBaseURL string
	StatsFeedAPIKey  string
	StatsFeedTimeout time.Duration

	// Cluster signal service
	ClusterBaseURL string
	ClusterTimeout time.Duration

	// Resolved-scores WebSocket feed
	ScoresWSURL string
	ScoresToken string

	// Persistence
	ModelPath       string
	ModelStoreURL   string // remote blob store; empty means local file only
	RecordStorePath string

	// League constants (yaml)
	LeagueConstantsPath string

	// HTTP API
	HTTPAddr string

	// Prediction cache
	CacheCapacity int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		StatsFeedBaseURL: envStr("STATS_FEED_BASE_URL", "https://stats.hoopcast.dev"),
		StatsFeedAPIKey:  envStr("STATS_FEED_API_KEY", ""),
		StatsFeedTimeout: time.Duration(envInt("STATS_FEED_TIMEOUT_SEC", 8)) * time.Second,

		ClusterBaseURL: envStr("CLUSTER_BASE_URL", ""),
		ClusterTimeout: time.Duration(envInt("CLUSTER_TIMEOUT_SEC", 3)) * time.Second,

		ScoresWSURL: envStr("SCORES_WS_URL", ""),
		ScoresToken: envStr("SCORES_TOKEN", ""),

		ModelPath:       envStr("MODEL_PATH", "data/rating_model.json"),
		ModelStoreURL:   envStr("MODEL_STORE_URL", ""),
		RecordStorePath: envStr("RECORD_STORE_PATH", "data/predictions.db"),

		LeagueConstantsPath: envStr("LEAGUE_CONSTANTS_PATH", "internal/config/league_constants.yaml"),

		HTTPAddr: envStr("HTTP_ADDR", "127.0.0.1:8080"),

		CacheCapacity: envInt("PREDICTION_CACHE_CAP", 256),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
