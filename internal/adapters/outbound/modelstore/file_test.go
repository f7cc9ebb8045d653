package modelstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarsh417/hoopcast/internal/core/model"
)

func openTestRepo(t *testing.T) *FileRepo {
	t.Helper()
	repo, err := NewFileRepo(filepath.Join(t.TempDir(), "model.json"))
	require.NoError(t, err)
	return repo
}

func TestFileRepoLoadBeforeFirstSave(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFileRepoSaveLoadRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	m := model.New()
	m.Teams["BOS"] = model.TeamRating{OffenseRating: 2.5, DefenseRating: -1}

	commitID, err := repo.Save(ctx, m, "")
	require.NoError(t, err)
	assert.Equal(t, m.Version, commitID)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.Version, got.Version)
	assert.Equal(t, 2.5, got.Teams["BOS"].OffenseRating)
	assert.Equal(t, m.Parameters, got.Parameters)
}

func TestFileRepoVersionCAS(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	first := model.New()
	_, err := repo.Save(ctx, first, "")
	require.NoError(t, err)

	// Descendant of the committed version goes through.
	second := first.Clone()
	second.Version = "v2"
	_, err = repo.Save(ctx, second, first.Version)
	require.NoError(t, err)

	// A writer still holding the original snapshot is stale.
	third := first.Clone()
	third.Version = "v3"
	_, err = repo.Save(ctx, third, first.Version)
	assert.ErrorIs(t, err, model.ErrVersionConflict)

	// First save must assert the empty parent.
	repo2 := openTestRepo(t)
	_, err = repo2.Save(ctx, model.New(), "some-version")
	assert.ErrorIs(t, err, model.ErrVersionConflict)
}
