package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("records:\n  - { id: a, name: Ann }\n  - { id: b, name: Ben }\n"), 0o644))
	return path
}

func TestSeedPlayDecisions_SQLite(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "deck.db")
	fixture := writeFixture(t, dir)

	out, err := execute(t, "", "seed", "--source", "sqlite", "--db", db, fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 record(s) into sqlite")

	out, err = execute(t, "", "decisions", "--source", "sqlite", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No decisions recorded.")

	out, err = execute(t, "wait 300ms\nshow\nlike\nwait 300ms\nquit\n", "play", "--source", "sqlite", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "1/2 a Ann")

	out, err = execute(t, "", "decisions", "--source", "sqlite", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "accept")
	assert.Contains(t, out, " a ")
}

func TestSeed_SampleDeckJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "deck.db")
	out, err := execute(t, "", "seed", "--source", "sqlite", "--db", db, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
	assert.Contains(t, out, `"source":"sqlite"`)
}

func TestSeed_MemoryIsRejected(t *testing.T) {
	out, err := execute(t, "", "seed", "--source", "memory")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeConfig)
}

func TestSeed_BadFixture(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("records:\n  - { id: a }\n  - { id: a }\n"), 0o644))

	out, err := execute(t, "", "seed", "--source", "sqlite", "--db", filepath.Join(dir, "x.db"), bad)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeFixture)
}

func TestDecisions_MemoryIsRejected(t *testing.T) {
	_, err := execute(t, "", "decisions")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
