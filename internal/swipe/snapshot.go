package swipe

import (
	"github.com/roach88/swipedeck/internal/gesture"
	"github.com/roach88/swipedeck/internal/record"
)

// Phase is the interaction phase of the top card.
type Phase int

const (
	// PhaseIdle: the top card is at rest, or returning to rest.
	PhaseIdle Phase = iota
	// PhaseDragging: the top card follows the finger.
	PhaseDragging
	// PhaseCommitting: the card was decided and is leaving; the deck advances
	// when the exit delay ends.
	PhaseCommitting
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseCommitting:
		return "committing"
	}
	return "unknown"
}

// Transition tells the presentation layer how to animate to TopOffset.
type Transition int

const (
	// TransitionNone: jump, nothing to animate.
	TransitionNone Transition = iota
	// TransitionInteractive: follow the finger.
	TransitionInteractive
	// TransitionSpringBack: return to rest after a release below threshold.
	TransitionSpringBack
	// TransitionExit: fly off screen towards TopOffset.
	TransitionExit
	// TransitionUndoReturn: TopOffset is where the card re-enters from;
	// animate it back to rest.
	TransitionUndoReturn
)

// String returns the kebab-case transition name.
func (t Transition) String() string {
	switch t {
	case TransitionNone:
		return "none"
	case TransitionInteractive:
		return "interactive"
	case TransitionSpringBack:
		return "spring-back"
	case TransitionExit:
		return "exit"
	case TransitionUndoReturn:
		return "undo-return"
	}
	return "unknown"
}

// Snapshot is an immutable view of the controller after a transition.
type Snapshot struct {
	Visible    []record.Record
	TopOffset  gesture.Vector
	Rotation   float64
	Transition Transition
	Phase      Phase
	Cursor     int
	Len        int
	LikeCount  int
	Exhausted  bool
	CanUndo    bool
	Version    uint64
}

// Current returns the top card, if any.
func (s Snapshot) Current() (record.Record, bool) {
	if len(s.Visible) == 0 {
		return record.Record{}, false
	}
	return s.Visible[0], true
}
