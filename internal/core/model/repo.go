package model

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no model has ever been committed.
	ErrNotFound = errors.New("rating model not found")

	// ErrVersionConflict means the caller's snapshot went stale between
	// Load and Save. Reload and re-derive; never retry the same save.
	ErrVersionConflict = errors.New("rating model version conflict")
)

// Repo persists the model with full-object replace semantics and a
// compare-and-swap on the parent version. That CAS is the single-writer
// contract: concurrent learners serialize at the repository, not in the
// pipeline. Readers load the latest committed snapshot without blocking.
type Repo interface {
	Load(ctx context.Context) (RatingModel, error)
	// Save commits m, whose lineage must descend from parentVersion.
	// An empty parentVersion asserts "no model exists yet".
	Save(ctx context.Context, m RatingModel, parentVersion string) (commitID string, err error)
}

// LoadOrInit loads the committed model, creating and committing a fresh
// zero-rated one on first use.
func LoadOrInit(ctx context.Context, repo Repo) (RatingModel, error) {
	m, err := repo.Load(ctx)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return RatingModel{}, err
	}

	m = New()
	if _, err := repo.Save(ctx, m, ""); err != nil {
		// Someone else initialized first; their model wins.
		if errors.Is(err, ErrVersionConflict) {
			return repo.Load(ctx)
		}
		return RatingModel{}, err
	}
	return m, nil
}
