package gesture

import "math"

// RotationConfig tunes the tilt applied to the top card while it is dragged.
type RotationConfig struct {
	MinDistance        float64 `yaml:"min_distance" validate:"gte=0"`        // below this, no tilt
	MaxAngle           float64 `yaml:"max_angle" validate:"gt=0"`            // degrees
	SaturationDistance float64 `yaml:"saturation_distance" validate:"gt=0"` // distance for full tilt
	DominanceRatio     float64 `yaml:"dominance_ratio" validate:"gt=0"`
}

// DefaultRotation returns the stock tilt parameters.
func DefaultRotation() RotationConfig {
	return RotationConfig{
		MinDistance:        10,
		MaxAngle:           45,
		SaturationDistance: 150,
		DominanceRatio:     2.0,
	}
}

// verticalSlack keeps the dominance weight finite for perfectly horizontal drags.
const verticalSlack = 20.0

// Rotation returns the tilt in degrees for a card displayed at offset.
//
// The angle follows the drag direction, clamped to ±MaxAngle, and grows with
// distance until SaturationDistance. Drags that are more vertical than
// horizontal are weighted down by |dx| / (|dy| + 20) * DominanceRatio,
// capped at 1.
func Rotation(offset Vector, cfg RotationConfig) float64 {
	distance := offset.Length()
	if distance <= cfg.MinDistance {
		return 0
	}

	degrees := math.Atan2(offset.Y, offset.X) * 180 / math.Pi
	degrees = math.Max(-cfg.MaxAngle, math.Min(cfg.MaxAngle, degrees))

	dominance := math.Abs(offset.X) / (math.Abs(offset.Y) + verticalSlack) * cfg.DominanceRatio
	weight := math.Min(dominance, 1)
	normalized := math.Min(distance/cfg.SaturationDistance, 1)

	return degrees * normalized * weight
}
