package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmarsh417/hoopcast/internal/telemetry"

	_ "modernc.org/sqlite"
)

const (
	maxStoreBytes int64   = 1 << 28 // 256 MiB
	evictPct      float64 = 0.10    // evict oldest 10% of rows
	vacuumEvery           = 10      // incremental vacuum every N evictions
)

// ErrRecordNotFound means no prediction row exists for the game id.
var ErrRecordNotFound = errors.New("prediction record not found")

// PredictionRecord is one served prediction, persisted at serve time and
// backfilled with the final score once the game resolves. The feature
// vector is frozen here so learning replays exactly what the pipeline saw.
type PredictionRecord struct {
	ID             int64
	GameID         string
	Season         string
	HomeTeam       string
	AwayTeam       string
	PredictedHome  float64
	PredictedAway  float64
	PredictedTotal float64
	MarketLine     *float64
	ModelVersion   string
	Features       map[string]float64
	DataQuality    string
	PredictedAt    time.Time

	// Resolution fields, zero until backfilled.
	ActualHome *int
	ActualAway *int
	ResolvedAt *time.Time
}

// Resolved reports whether the final score has been backfilled.
func (r *PredictionRecord) IsResolved() bool {
	return r.ActualHome != nil && r.ActualAway != nil
}

// PredictionStore persists prediction records in a FIFO SQLite database
// capped at ~256 MiB. Oldest 10% of rows are evicted when over budget.
type PredictionStore struct {
	db           *sql.DB
	mu           sync.Mutex
	cachedSize   int64
	rowCount     int64
	evictCounter int
}

func OpenPredictionStore(path string) (*PredictionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create prediction store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	var avMode int
	if err := db.QueryRow(`PRAGMA auto_vacuum`).Scan(&avMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("read auto_vacuum: %w", err)
	}
	if avMode != 2 {
		if _, err := db.Exec(`PRAGMA auto_vacuum = INCREMENTAL`); err != nil {
			db.Close()
			return nil, fmt.Errorf("set auto_vacuum: %w", err)
		}
		if _, err := db.Exec(`VACUUM`); err != nil {
			telemetry.Warnf("prediction store: VACUUM to enable auto_vacuum failed: %v", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init prediction schema: %w", err)
	}

	var size int64
	db.QueryRow(`SELECT COALESCE(page_count * page_size, 0) FROM pragma_page_count(), pragma_page_size()`).Scan(&size)
	var rowCount int64
	db.QueryRow(`SELECT COUNT(*) FROM predictions`).Scan(&rowCount)

	telemetry.Plainf("prediction store: opened %s  size=%d  rows=%d", path, size, rowCount)
	return &PredictionStore{db: db, cachedSize: size, rowCount: rowCount}, nil
}

const schema = `CREATE TABLE IF NOT EXISTS predictions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id         TEXT    NOT NULL,
	season          TEXT    NOT NULL,
	home_team       TEXT    NOT NULL,
	away_team       TEXT    NOT NULL,
	predicted_home  REAL    NOT NULL,
	predicted_away  REAL    NOT NULL,
	predicted_total REAL    NOT NULL,
	market_line     REAL,
	model_version   TEXT    NOT NULL,
	features_json   TEXT    NOT NULL,
	data_quality    TEXT    NOT NULL DEFAULT '',
	predicted_at    TEXT    NOT NULL,

	-- Resolution (nullable until the game finishes)
	actual_home     INTEGER,
	actual_away     INTEGER,
	resolved_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_predictions_game ON predictions(game_id);`

// Insert stores a new prediction record and returns the row ID.
func (s *PredictionStore) Insert(r *PredictionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	features, err := json.Marshal(r.Features)
	if err != nil {
		return 0, fmt.Errorf("marshal features: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO predictions (
			game_id, season, home_team, away_team,
			predicted_home, predicted_away, predicted_total,
			market_line, model_version, features_json, data_quality, predicted_at
		) VALUES (?,?,?,?, ?,?,?, ?,?,?,?,?)`,
		r.GameID, r.Season, r.HomeTeam, r.AwayTeam,
		r.PredictedHome, r.PredictedAway, r.PredictedTotal,
		nullFloat(r.MarketLine), r.ModelVersion, string(features), r.DataQuality,
		r.PredictedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert prediction: %w", err)
	}

	id, _ := res.LastInsertId()
	s.rowCount++
	telemetry.Metrics.RecordsStored.Inc()
	s.refreshSize()
	if s.cachedSize > maxStoreBytes {
		s.evict()
	}
	return id, nil
}

// BackfillResolution writes the final score onto the newest unresolved
// record for the game. Missing records are reported, not invented.
func (s *PredictionStore) BackfillResolution(gameID string, actualHome, actualAway int, resolvedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE predictions SET actual_home=?, actual_away=?, resolved_at=?
		 WHERE id = (
			SELECT id FROM predictions
			WHERE game_id = ? AND actual_home IS NULL
			ORDER BY id DESC LIMIT 1
		 )`,
		actualHome, actualAway, resolvedAt.UTC().Format(time.RFC3339Nano), gameID,
	)
	if err != nil {
		return fmt.Errorf("backfill resolution: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("game %s: %w", gameID, ErrRecordNotFound)
	}
	return nil
}

// GetByGameID returns the newest prediction record for the game.
func (s *PredictionStore) GetByGameID(gameID string) (*PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(selectCols+` WHERE game_id = ? ORDER BY id DESC LIMIT 1`, gameID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrRecordNotFound)
	}
	return r, err
}

// Resolved returns all resolved records in insertion order, oldest first.
// Used by the calibration replay.
func (s *PredictionStore) Resolved() ([]*PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(selectCols + ` WHERE actual_home IS NOT NULL ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PredictionRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const selectCols = `SELECT id, game_id, season, home_team, away_team,
	predicted_home, predicted_away, predicted_total,
	market_line, model_version, features_json, data_quality, predicted_at,
	actual_home, actual_away, resolved_at
	FROM predictions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*PredictionRecord, error) {
	var (
		r           PredictionRecord
		marketLine  sql.NullFloat64
		features    string
		predictedAt string
		actualHome  sql.NullInt64
		actualAway  sql.NullInt64
		resolvedAt  sql.NullString
	)
	if err := row.Scan(&r.ID, &r.GameID, &r.Season, &r.HomeTeam, &r.AwayTeam,
		&r.PredictedHome, &r.PredictedAway, &r.PredictedTotal,
		&marketLine, &r.ModelVersion, &features, &r.DataQuality, &predictedAt,
		&actualHome, &actualAway, &resolvedAt,
	); err != nil {
		return nil, err
	}

	if marketLine.Valid {
		v := marketLine.Float64
		r.MarketLine = &v
	}
	if err := json.Unmarshal([]byte(features), &r.Features); err != nil {
		return nil, fmt.Errorf("parse features for %s: %w", r.GameID, err)
	}
	r.PredictedAt, _ = time.Parse(time.RFC3339Nano, predictedAt)
	if actualHome.Valid && actualAway.Valid {
		h, a := int(actualHome.Int64), int(actualAway.Int64)
		r.ActualHome, r.ActualAway = &h, &a
	}
	if resolvedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, resolvedAt.String); err == nil {
			r.ResolvedAt = &t
		}
	}
	return &r, nil
}

// refreshSize re-reads the database file size from SQLite pragmas.
// Must be called with s.mu held.
func (s *PredictionStore) refreshSize() {
	var size int64
	row := s.db.QueryRow(`SELECT COALESCE(page_count * page_size, 0) FROM pragma_page_count(), pragma_page_size()`)
	if err := row.Scan(&size); err == nil {
		s.cachedSize = size
	}
}

// evict deletes the oldest 10% of rows by count.
// Must be called with s.mu held.
func (s *PredictionStore) evict() {
	toDelete := int64(float64(s.rowCount) * evictPct)
	if toDelete < 1 {
		toDelete = 1
	}

	res, err := s.db.Exec(
		`DELETE FROM predictions WHERE id IN (
			SELECT id FROM predictions ORDER BY id ASC LIMIT ?
		)`, toDelete,
	)
	if err != nil {
		telemetry.Warnf("prediction store evict: %v", err)
		return
	}

	deleted, _ := res.RowsAffected()
	s.rowCount -= deleted
	s.evictCounter++

	telemetry.Infof("prediction store: evicted %d rows (target %d)", deleted, toDelete)

	if s.evictCounter%vacuumEvery == 0 {
		s.db.Exec(`PRAGMA incremental_vacuum`)
	}

	s.refreshSize()
}

func (s *PredictionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
