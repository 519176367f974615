package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel_AllBranches(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"   nonsense   ", zerolog.InfoLevel},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseLevel(c.in), "ParseLevel(%q)", c.in)
	}
}

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: "json", Component: "root", Writer: &buf})
	named := Named(log, "swipe")
	named.Debug().Str("record", "a").Msg("committed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "committed", line["message"])
	assert.Equal(t, "a", line["record"])
	assert.Equal(t, "swipe", line["component"])
	assert.Equal(t, "debug", line["level"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "json", Writer: &buf})
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNew_ConsoleIsPlainText(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf})
	log.Info().Msg("hello")

	out := buf.String()
	assert.True(t, strings.Contains(out, "hello"))
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "console format is not JSON")
}

func TestNop(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, Nop().GetLevel())
}
