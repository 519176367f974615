// Package gesture turns raw drag samples into swipe decisions.
//
// Everything here is a pure function of its inputs: no state, no clocks.
// Classify decides what a released drag means; Damp, Rotation and ExitOffset
// describe how the top card should look while and after it moves.
package gesture

import "math"

// Decision is the outcome of a released drag.
type Decision int

const (
	// None means the gesture did not cross any threshold; the card springs back.
	None Decision = iota
	// Accept is a right swipe (like).
	Accept
	// Reject is a left swipe (nope).
	Reject
)

// String returns the lowercase name of the decision.
func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "none"
	}
}

// Vector is a 2D offset in logical pixels.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Zero is the resting offset.
var Zero = Vector{}

// IsZero reports whether v is the resting offset.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Scale multiplies both components by f.
func (v Vector) Scale(f float64) Vector { return Vector{X: v.X * f, Y: v.Y * f} }

// Length returns the euclidean length of v.
func (v Vector) Length() float64 { return math.Hypot(v.X, v.Y) }

// Sample is a drag measurement taken when the pointer is released.
type Sample struct {
	Translation  Vector
	PredictedEnd Vector
	VelocityX    float64 // points per second
}

// Default thresholds.
const (
	DefaultPositionThreshold = 120.0 // logical pixels
	DefaultVelocityThreshold = 800.0 // pixels per second
	DefaultDampingFactor     = 0.8
	DefaultFlyDistance       = 1000.0
)

// Thresholds tunes Classify.
type Thresholds struct {
	Position float64 `yaml:"position" validate:"gt=0"`
	Velocity float64 `yaml:"velocity" validate:"gt=0"`
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Position: DefaultPositionThreshold, Velocity: DefaultVelocityThreshold}
}

// Classify maps a released drag onto a decision.
//
// Order matters: a horizontal fling faster than th.Velocity decides by its
// direction even when the projected position is short of th.Position.
// Otherwise the projected end position decides. Anything else is None.
func Classify(s Sample, th Thresholds) Decision {
	if math.Abs(s.VelocityX) > th.Velocity {
		if s.VelocityX > 0 {
			return Accept
		}
		return Reject
	}
	if math.Abs(s.PredictedEnd.X) > th.Position {
		if s.PredictedEnd.X > 0 {
			return Accept
		}
		return Reject
	}
	return None
}

// Damp scales a raw drag translation into the displayed card offset.
func Damp(raw Vector, factor float64) Vector {
	return raw.Scale(factor)
}

// ExitOffset is where a decided card flies to. The card leaves along the
// direction of the predicted drag end: x is pushed to ±flyDistance and y
// follows the same slope. A purely vertical prediction exits horizontally.
func ExitOffset(d Decision, predictedEnd Vector, flyDistance float64) Vector {
	x := flyDistance
	if d == Reject {
		x = -flyDistance
	}
	y := 0.0
	if predictedEnd.X != 0 {
		y = predictedEnd.Y / predictedEnd.X * flyDistance
	}
	return Vector{X: x, Y: y}
}
