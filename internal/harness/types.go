package harness

// TraceEvent is the controller state observed after one step.
// Offsets and rotation are left out so traces stay free of floats.
type TraceEvent struct {
	Step       int      `json:"step"`
	Op         string   `json:"op"`
	Cursor     int      `json:"cursor"`
	Len        int      `json:"len"`
	Current    string   `json:"current,omitempty"`
	Visible    []string `json:"visible"`
	Phase      string   `json:"phase"`
	Transition string   `json:"transition"`
	LikeCount  int      `json:"like_count"`
	Exhausted  bool     `json:"exhausted"`
	CanUndo    bool     `json:"can_undo"`
	Sent       int      `json:"sent"`
	Errors     int      `json:"errors"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Trace has one event per executed step.
	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Sent lists decisions delivered to the source as "kind:record_id".
	Sent []string `json:"sent"`

	// Reported lists the codes of errors the controller reported.
	Reported []string `json:"reported"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		Sent:     []string{},
		Reported: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
