package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sparselm/engine"
	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/groups"
	"github.com/katalvlaran/sparselm/internal/config"
	"github.com/katalvlaran/sparselm/selection"
)

const sample = `
log:
  level: debug
model:
  family: sparse_group_lasso
  lambda: 0.3
  alpha: 0.25
  groups: [0, 0, 1, 2]
  group_weights:
    "1": 2.0
data:
  path: data.csv
  target: y
cv:
  splits: 4
  shuffle: true
  seed: 7
  method: one_std_score
  grid:
    lambda: [0.01, 0.1, 1]
`

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sparselm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadFile(t *testing.T) {
	cfg, err := config.Load(write(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sparse_group_lasso", cfg.Model.Family)
	assert.Equal(t, 0.3, cfg.Model.Lambda)
	assert.Equal(t, engine.DefaultBigM, cfg.Model.BigM)
	assert.True(t, cfg.Model.FitIntercept)
	assert.Equal(t, "y", cfg.Data.Target)
	assert.Equal(t, 4, cfg.CV.Splits)
	assert.Equal(t, uint64(7), cfg.CV.Seed)
	assert.Len(t, cfg.CV.Grid["lambda"], 3)

	ec, err := cfg.Model.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, engine.SparseGroupLasso, ec.Family)
	assert.Equal(t, 0.25, ec.Alpha)
	assert.Equal(t, map[groups.ID]float64{"1": 2}, ec.GroupWeights)

	a, err := cfg.Model.GroupAssignment()
	require.NoError(t, err)
	assert.Equal(t, groups.FromLabels([]int{0, 0, 1, 2}), a)

	r, err := cfg.Model.Regressor()
	require.NoError(t, err)
	assert.Equal(t, engine.SparseGroupLasso, r.Family())

	gs, err := cfg.CV.Search(r)
	require.NoError(t, err)
	assert.Equal(t, selection.OneStdScore, gs.Method)
	assert.Equal(t, selection.KFold{Splits: 4, Shuffle: true, Seed: 7}, gs.Folds)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPARSELM_MODEL_LAMBDA", "0.125")
	t.Setenv("SPARSELM_MODEL_FAMILY", "lasso")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.125, cfg.Model.Lambda)
	assert.Equal(t, "lasso", cfg.Model.Family)
	assert.Equal(t, selection.DefaultSplits, cfg.CV.Splits)
}

func TestLoadRejectsInvalidModel(t *testing.T) {
	_, err := config.Load(write(t, "model:\n  family: elastic\n"))
	assert.ErrorIs(t, err, engine.ErrUnknownFamily)

	_, err = config.Load(write(t, "model:\n  family: lasso\n  lambda: -1\n"))
	assert.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGroupsAndAssignmentConflict(t *testing.T) {
	m := config.Model{Groups: []int{0}, Assignment: [][]string{{"a"}}}
	_, err := m.GroupAssignment()
	assert.ErrorIs(t, err, config.ErrGroups)

	m = config.Model{Assignment: [][]string{{"a"}, {"a", "b"}}}
	a, err := m.GroupAssignment()
	require.NoError(t, err)
	assert.Equal(t, groups.Assignment{{"a"}, {"a", "b"}}, a)
}

func TestGroupHierarchy(t *testing.T) {
	m := config.Model{Hierarchy: map[string][]string{"0": {"1", "2"}}}
	assert.Equal(t, groups.Hierarchy{"0": {"1", "2"}}, m.GroupHierarchy())
	assert.Nil(t, config.Model{}.GroupHierarchy())
}
