package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_LikeThenUndo(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/like_then_undo.yaml")
	require.NoError(t, err)

	assert.Equal(t, "like_then_undo", s.Name)
	require.Len(t, s.Deck, 3)
	assert.Equal(t, "a", s.Deck[0].ID)
	require.Len(t, s.Steps, 6)
	assert.Equal(t, OpRelease, s.Steps[2].Op)
	assert.Equal(t, 200.0, s.Steps[2].X)
	require.NotNil(t, s.Steps[2].Expect)
	require.NotNil(t, s.Steps[2].Expect.LikeCount)
	assert.Equal(t, 1, *s.Steps[2].Expect.LikeCount)
	require.NotNil(t, s.Assertions)
	assert.Equal(t, []string{"accept:a", "rewind:a"}, s.Assertions.Sent)
	assert.NotNil(t, s.Assertions.Errors, "errors: [] is an explicit empty expectation")
}

func TestParseScenario_DurationAndOptions(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: n
description: d
options:
  exit_delay: 50ms
steps:
  - op: advance
    duration: 1500ms
`))
	require.NoError(t, err)
	require.NotNil(t, s.Options)
	assert.Equal(t, 50*time.Millisecond, s.Options.ExitDelay)
	assert.Equal(t, 1500*time.Millisecond, s.Steps[0].Duration)
}

func TestParseScenario_Invalid(t *testing.T) {
	cases := map[string]struct {
		yaml string
		msg  string
	}{
		"missing name": {
			yaml: "description: d\nsteps: [{op: load}]\n",
			msg:  "name is required",
		},
		"missing description": {
			yaml: "name: n\nsteps: [{op: load}]\n",
			msg:  "description is required",
		},
		"no steps": {
			yaml: "name: n\ndescription: d\n",
			msg:  "steps list is required",
		},
		"unknown field": {
			yaml: "name: n\ndescription: d\nstep: [{op: load}]\n",
			msg:  "failed to parse YAML",
		},
		"unknown op": {
			yaml: "name: n\ndescription: d\nsteps: [{op: swipe}]\n",
			msg:  `unknown op "swipe"`,
		},
		"empty op": {
			yaml: "name: n\ndescription: d\nsteps: [{x: 1}]\n",
			msg:  "op is required",
		},
		"deliver without payload": {
			yaml: "name: n\ndescription: d\nsteps: [{op: deliver}]\n",
			msg:  "deliver needs records or error",
		},
		"deliver with both": {
			yaml: "name: n\ndescription: d\nsteps: [{op: deliver, records: [], error: boom}]\n",
			msg:  "not both",
		},
		"decide without kind": {
			yaml: "name: n\ndescription: d\nsteps: [{op: decide}]\n",
			msg:  "kind is required",
		},
		"advance without duration": {
			yaml: "name: n\ndescription: d\nsteps: [{op: advance}]\n",
			msg:  "duration must be positive",
		},
		"duplicate deck ids": {
			yaml: "name: n\ndescription: d\ndeck: [{id: a}, {id: a}]\nsteps: [{op: load}]\n",
			msg:  "duplicate id",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
