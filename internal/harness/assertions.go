package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError describes one expectation that did not hold.
type AssertionError struct {
	Where    string // "steps[3] release" or "assertions"
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s: expected %s, got %s", e.Where, e.Field, e.Expected, e.Actual)
}

// check compares the controller's current state against exp and returns a
// message per mismatch.
func (h *Harness) check(exp Expect, where string) []string {
	snap := h.ctrl.Snapshot()
	current := ""
	if r, ok := snap.Current(); ok {
		current = r.ID
	}

	var failures []string
	fail := func(field string, want, got any) {
		failures = append(failures, (&AssertionError{
			Where:    where,
			Field:    field,
			Expected: fmt.Sprint(want),
			Actual:   fmt.Sprint(got),
		}).Error())
	}

	if exp.Cursor != nil && *exp.Cursor != snap.Cursor {
		fail("cursor", *exp.Cursor, snap.Cursor)
	}
	if exp.Current != nil && *exp.Current != current {
		fail("current", quote(*exp.Current), quote(current))
	}
	if exp.LikeCount != nil && *exp.LikeCount != snap.LikeCount {
		fail("like_count", *exp.LikeCount, snap.LikeCount)
	}
	if exp.Exhausted != nil && *exp.Exhausted != snap.Exhausted {
		fail("exhausted", *exp.Exhausted, snap.Exhausted)
	}
	if exp.Phase != "" && exp.Phase != snap.Phase.String() {
		fail("phase", exp.Phase, snap.Phase)
	}
	if exp.Transition != "" && exp.Transition != snap.Transition.String() {
		fail("transition", exp.Transition, snap.Transition)
	}
	if exp.Visible != nil {
		if got := visibleIDs(snap); !slices.Equal(exp.Visible, got) {
			fail("visible", list(exp.Visible), list(got))
		}
	}
	if exp.CanUndo != nil && *exp.CanUndo != snap.CanUndo {
		fail("can_undo", *exp.CanUndo, snap.CanUndo)
	}
	if exp.Sent != nil {
		if got := h.sent(); !slices.Equal(exp.Sent, got) {
			fail("sent", list(exp.Sent), list(got))
		}
	}
	if exp.Errors != nil {
		if got := h.reported(); !slices.Equal(exp.Errors, got) {
			fail("errors", list(exp.Errors), list(got))
		}
	}
	return failures
}

func quote(s string) string { return fmt.Sprintf("%q", s) }

func list(items []string) string { return "[" + strings.Join(items, ", ") + "]" }
