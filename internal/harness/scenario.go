package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/swipedeck/internal/record"
	"github.com/roach88/swipedeck/internal/swipe"
)

// Scenario is a scripted session against one controller.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Deck is what the source returns from FetchInitial.
	Deck []record.Record `yaml:"deck"`

	// Options overrides the controller tuning; zero fields keep defaults.
	Options *swipe.Options `yaml:"options,omitempty"`

	Steps []Step `yaml:"steps"`

	// Assertions are checked once after the last step.
	Assertions *Expect `yaml:"assertions,omitempty"`
}

// Step ops.
const (
	OpLoad       = "load"
	OpDeliver    = "deliver"
	OpFailFetch  = "fail_fetch"
	OpFailSend   = "fail_send"
	OpDrag       = "drag"
	OpRelease    = "release"
	OpDecide     = "decide"
	OpUndo       = "undo"
	OpAdvance    = "advance"
	OpFireTimers = "fire_timers"
	OpClose      = "close"
)

// Step is one scripted input.
type Step struct {
	Op string `yaml:"op"`

	// Records is the batch for deliver. Use [] for an empty deck.
	Records []record.Record `yaml:"records,omitempty"`

	// Error is the failure for deliver, fail_fetch and fail_send.
	Error string `yaml:"error,omitempty"`

	X        float64       `yaml:"x,omitempty"`
	Y        float64       `yaml:"y,omitempty"`
	Velocity float64       `yaml:"velocity,omitempty"`
	Kind     string        `yaml:"kind,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists state to check. Nil fields are not checked.
type Expect struct {
	Cursor     *int     `yaml:"cursor,omitempty"`
	Current    *string  `yaml:"current,omitempty"` // "" means no current record
	LikeCount  *int     `yaml:"like_count,omitempty"`
	Exhausted  *bool    `yaml:"exhausted,omitempty"`
	Phase      string   `yaml:"phase,omitempty"`
	Transition string   `yaml:"transition,omitempty"`
	Visible    []string `yaml:"visible,omitempty"`
	CanUndo    *bool    `yaml:"can_undo,omitempty"`

	// Sent is every decision sent so far, as "kind:record_id".
	Sent []string `yaml:"sent,omitempty"`

	// Errors is every reported error code so far.
	Errors []string `yaml:"errors,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if err := record.ValidateDeck(s.Deck); err != nil {
		return fmt.Errorf("deck: %w", err)
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	switch step.Op {
	case OpLoad, OpFailFetch, OpFailSend, OpDrag, OpRelease, OpUndo, OpFireTimers, OpClose:
	case OpDeliver:
		if step.Records == nil && step.Error == "" {
			return fmt.Errorf("steps[%d]: deliver needs records or error", i)
		}
		if step.Records != nil && step.Error != "" {
			return fmt.Errorf("steps[%d]: deliver takes records or error, not both", i)
		}
	case OpDecide:
		if step.Kind == "" {
			return fmt.Errorf("steps[%d]: kind is required for decide", i)
		}
	case OpAdvance:
		if step.Duration <= 0 {
			return fmt.Errorf("steps[%d]: duration must be positive for advance", i)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}
	return nil
}
