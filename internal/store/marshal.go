package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/swipedeck/internal/record"
)

// timeLayout stores decision timestamps as sortable UTC text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// marshalMedia converts a media list to JSON TEXT. nil and empty both
// store as "[]".
func marshalMedia(media []record.Media) (string, error) {
	if len(media) == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // URLs keep their '&'
	if err := enc.Encode(media); err != nil {
		return "", fmt.Errorf("marshal media: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalMedia parses JSON TEXT into a media list; "[]" yields nil.
func unmarshalMedia(data string) ([]record.Media, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var media []record.Media
	if err := json.Unmarshal([]byte(data), &media); err != nil {
		return nil, fmt.Errorf("unmarshal media: %w", err)
	}
	return media, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse decided_at %q: %w", s, err)
	}
	return t, nil
}
