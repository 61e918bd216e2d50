package harness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "name: b\n")
	writeFile(t, dir, "a.yml", "name: a\n")
	writeFile(t, dir, "notes.txt", "not a scenario\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vocab.yaml"), 0755))

	files, err := FindScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, files)

	files, err = FindScenarios(filepath.Join(dir, "b.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yaml")}, files)

	files, err = FindScenarios(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindScenarios_Missing(t *testing.T) {
	_, err := FindScenarios("/nonexistent/scenarios")
	require.Error(t, err)

	var notFound *ScenarioNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "/nonexistent/scenarios", notFound.Path)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRunSuite_Testdata(t *testing.T) {
	result, err := RunSuite(context.Background(), filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalScenarios)
	assert.Equal(t, 1, result.Passed)
	assert.Zero(t, result.Failed)
	assert.Empty(t, result.Failures)
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	createTestVocab(t, dir)

	writeFile(t, dir, "1_pass.yaml", `
name: pass
description: "Vocabulary registers"
vocab: [vocab/gaze.cue]
assertions:
  - type: stats
    counts: {predicates: 1, matrices: 1}
`)
	writeFile(t, dir, "2_fail.yaml", `
name: fail
description: "Wrong count"
vocab: [vocab/gaze.cue]
assertions:
  - type: stats
    counts: {predicates: 5}
`)
	writeFile(t, dir, "3_broken.yaml", `
name: broken
assertions: []
`)

	result, err := RunSuite(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalScenarios)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)

	assert.Equal(t, "fail", result.Failures[0].Name)
	assert.Contains(t, result.Failures[0].Error, "predicates=1 (want 5)")
	assert.Empty(t, result.Failures[1].Name)
	assert.Contains(t, result.Failures[1].Error, "failed to load scenario")
}

func TestRunSuite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunSuite(ctx, filepath.Join("testdata", "scenarios"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.TotalScenarios)
}
