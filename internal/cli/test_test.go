package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: like_once
description: a like advances after the exit delay
deck: [{id: a}, {id: b}]
steps:
  - op: load
  - op: decide
    kind: accept
  - op: fire_timers
    expect: { current: b, like_count: 1 }
`

const failingScenario = `name: wrong_cursor
description: expects the wrong cursor
deck: [{id: a}]
steps:
  - op: load
    expect: { cursor: 3 }
`

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestTestCommand_PassAndGoldenUpdate(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "like_once.yaml", passingScenario)

	out, err := execute(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ like_once (golden updated)")
	assert.FileExists(t, filepath.Join(dir, "golden", "like_once.golden"))

	out, err = execute(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "like_once.yaml", passingScenario)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "like_once.golden"), []byte("{}\n"), 0o644))

	out, err := execute(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommand_FailureJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "like_once.yaml", passingScenario)
	writeScenario(t, dir, "wrong_cursor.yaml", failingScenario)

	out, err := execute(t, "", "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string        `json:"status"`
		Data   TestResult    `json:"data"`
		Error  ResponseError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "like_once.yaml", passingScenario)
	writeScenario(t, dir, "wrong_cursor.yaml", failingScenario)

	out, err := execute(t, "", "test", dir, "--filter", "like_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_MissingPath(t *testing.T) {
	_, err := execute(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
