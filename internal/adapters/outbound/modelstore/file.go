package modelstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmarsh417/hoopcast/internal/core/model"
	"github.com/dmarsh417/hoopcast/internal/telemetry"
)

// FileRepo persists the rating model as a JSON blob on local disk, with
// write-temp-then-rename so a crash mid-save never leaves a torn model.
// The mutex plus version compare-and-swap enforces the single-writer
// contract for learners sharing one process.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

func NewFileRepo(path string) (*FileRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &FileRepo{path: path}, nil
}

func (r *FileRepo) Load(_ context.Context) (model.RatingModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *FileRepo) Save(_ context.Context, m model.RatingModel, parentVersion string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.read()
	switch {
	case err == nil:
		if current.Version != parentVersion {
			telemetry.Metrics.ModelConflicts.Inc()
			return "", fmt.Errorf("save model (have %s, parent %s): %w",
				current.Version, parentVersion, model.ErrVersionConflict)
		}
	case err == model.ErrNotFound:
		if parentVersion != "" {
			telemetry.Metrics.ModelConflicts.Inc()
			return "", fmt.Errorf("save model (no committed model, parent %s): %w",
				parentVersion, model.ErrVersionConflict)
		}
	default:
		return "", err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal model: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write model tmp: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return "", fmt.Errorf("commit model: %w", err)
	}

	return m.Version, nil
}

func (r *FileRepo) read() (model.RatingModel, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RatingModel{}, model.ErrNotFound
		}
		return model.RatingModel{}, fmt.Errorf("read model: %w", err)
	}

	var m model.RatingModel
	if err := json.Unmarshal(data, &m); err != nil {
		return model.RatingModel{}, fmt.Errorf("parse model: %w", err)
	}
	return m, nil
}
