package harness

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/gesture"
	"github.com/roach88/swipedeck/internal/swipe"
	"github.com/roach88/swipedeck/internal/testutil"
)

// DefaultWait bounds how long a step waits for the controller's background
// load to post its results.
const DefaultWait = 2 * time.Second

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger handed to the controller.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Harness) { h.log = l }
}

// WithWait overrides DefaultWait.
func WithWait(d time.Duration) Option {
	return func(h *Harness) { h.wait = d }
}

// Harness drives one controller through a scenario.
type Harness struct {
	src    *testutil.ScriptedSource
	sched  *testutil.Scheduler
	ctrl   *swipe.Controller
	errs   []error
	loads  int
	closed bool
	log    zerolog.Logger
	wait   time.Duration
}

// Run executes a scenario and returns the result.
//
// A non-nil error means the scenario itself could not be driven (for
// example a deliver with no open subscription). Failed expectations are
// reported in Result.Errors instead.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		src:   testutil.NewScriptedSource(scenario.Deck),
		sched: testutil.NewScheduler(),
		log:   zerolog.Nop(),
		wait:  DefaultWait,
	}
	for _, opt := range opts {
		opt(h)
	}

	ctrlOpts := []swipe.Option{
		swipe.WithLogger(h.log),
		swipe.WithIDGenerator(decision.NewSequenceGenerator("d")),
		swipe.WithNow(testutil.NewDeterministicClock().Now),
		swipe.WithDetach(func(task func()) { task() }),
	}
	if scenario.Options != nil {
		ctrlOpts = append(ctrlOpts, swipe.WithOptions(*scenario.Options))
	}
	h.ctrl = swipe.New(h.src, h.sched, ctrlOpts...)
	h.ctrl.SubscribeErrors(func(err error) { h.errs = append(h.errs, err) })
	defer h.ctrl.Close()

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		h.sched.RunPending()

		event := h.observe(i, step.Op)
		result.Trace = append(result.Trace, event)
		if step.Expect != nil {
			for _, msg := range h.check(*step.Expect, fmt.Sprintf("steps[%d] %s", i, step.Op)) {
				result.AddError(msg)
			}
		}
	}

	if scenario.Assertions != nil {
		for _, msg := range h.check(*scenario.Assertions, "assertions") {
			result.AddError(msg)
		}
	}
	result.Sent = h.sent()
	result.Reported = h.reported()
	return result, nil
}

func (h *Harness) execute(step Step) error {
	switch step.Op {
	case OpLoad:
		return h.load()
	case OpDeliver:
		b := bridge.Batch{Records: step.Records}
		if step.Error != "" {
			b = bridge.Batch{Err: errors.New(step.Error)}
		}
		if !h.src.Deliver(b) {
			return errors.New("no open subscription")
		}
		if !h.sched.WaitForPosts(1, h.wait) {
			return errors.New("batch was never posted")
		}
	case OpFailFetch:
		h.src.SetFetchError(optionalError(step.Error))
	case OpFailSend:
		h.src.SetSendError(optionalError(step.Error))
	case OpDrag:
		h.ctrl.DragChanged(gesture.Vector{X: step.X, Y: step.Y})
	case OpRelease:
		end := gesture.Vector{X: step.X, Y: step.Y}
		h.ctrl.DragEnded(gesture.Sample{Translation: end, PredictedEnd: end, VelocityX: step.Velocity})
	case OpDecide:
		kind, err := decision.ParseKind(step.Kind)
		if err != nil {
			kind = decision.Kind(step.Kind)
		}
		h.ctrl.Decide(kind)
	case OpUndo:
		h.ctrl.Undo()
	case OpAdvance:
		h.sched.Advance(step.Duration)
	case OpFireTimers:
		h.sched.FireAll()
	case OpClose:
		h.ctrl.Close()
		h.closed = true
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

// load starts a subscription and waits until the fetch result is applied
// and the source has been observed.
func (h *Harness) load() error {
	h.ctrl.Load()
	if h.closed {
		return nil
	}
	h.loads++
	if !h.sched.WaitForPosts(1, h.wait) {
		return errors.New("fetch result was never posted")
	}
	h.sched.RunPending()
	if !h.src.WaitForObservers(h.loads, h.wait) {
		return errors.New("subscription never opened")
	}
	return nil
}

func optionalError(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

func (h *Harness) observe(i int, op string) TraceEvent {
	snap := h.ctrl.Snapshot()
	ev := TraceEvent{
		Step:       i,
		Op:         op,
		Cursor:     snap.Cursor,
		Len:        snap.Len,
		Visible:    visibleIDs(snap),
		Phase:      snap.Phase.String(),
		Transition: snap.Transition.String(),
		LikeCount:  snap.LikeCount,
		Exhausted:  snap.Exhausted,
		CanUndo:    snap.CanUndo,
		Sent:       len(h.src.Sent()),
		Errors:     len(h.errs),
	}
	if r, ok := snap.Current(); ok {
		ev.Current = r.ID
	}
	return ev
}

func visibleIDs(snap swipe.Snapshot) []string {
	ids := make([]string, len(snap.Visible))
	for i, r := range snap.Visible {
		ids[i] = r.ID
	}
	return ids
}

func (h *Harness) sent() []string {
	sent := h.src.Sent()
	out := make([]string, len(sent))
	for i, d := range sent {
		out[i] = string(d.Kind) + ":" + d.RecordID
	}
	return out
}

func (h *Harness) reported() []string {
	out := make([]string, len(h.errs))
	for i, err := range h.errs {
		out[i] = string(bridge.CodeOf(err))
	}
	return out
}
