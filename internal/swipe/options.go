package swipe

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/swipedeck/internal/deck"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/gesture"
)

const (
	// DefaultExitDelay is how long a decided card animates off screen before
	// the deck advances.
	DefaultExitDelay = 400 * time.Millisecond

	// DefaultSendTimeout bounds each Source.Send call.
	DefaultSendTimeout = 10 * time.Second
)

// Options holds the tunables of a Controller.
type Options struct {
	Thresholds    gesture.Thresholds     `yaml:"thresholds"`
	Rotation      gesture.RotationConfig `yaml:"rotation"`
	DampingFactor float64                `yaml:"damping_factor" validate:"gt=0,lte=1"`
	FlyDistance   float64                `yaml:"fly_distance" validate:"gt=0"`
	ExitDelay     time.Duration          `yaml:"exit_delay" validate:"gte=0"`
	SendTimeout   time.Duration          `yaml:"send_timeout" validate:"gt=0"`
	Window        int                    `yaml:"window" validate:"gte=1,lte=10"`
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		Thresholds:    gesture.DefaultThresholds(),
		Rotation:      gesture.DefaultRotation(),
		DampingFactor: gesture.DefaultDampingFactor,
		FlyDistance:   gesture.DefaultFlyDistance,
		ExitDelay:     DefaultExitDelay,
		SendTimeout:   DefaultSendTimeout,
		Window:        deck.DefaultWindow,
	}
}

// withDefaults fills zero fields from DefaultOptions. ExitDelay may be zero.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Thresholds.Position <= 0 {
		o.Thresholds.Position = def.Thresholds.Position
	}
	if o.Thresholds.Velocity <= 0 {
		o.Thresholds.Velocity = def.Thresholds.Velocity
	}
	if o.Rotation == (gesture.RotationConfig{}) {
		o.Rotation = def.Rotation
	}
	if o.DampingFactor <= 0 {
		o.DampingFactor = def.DampingFactor
	}
	if o.FlyDistance <= 0 {
		o.FlyDistance = def.FlyDistance
	}
	if o.ExitDelay < 0 {
		o.ExitDelay = 0
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = def.SendTimeout
	}
	if o.Window <= 0 {
		o.Window = def.Window
	}
	return o
}

// Option configures a Controller.
type Option func(*Controller)

// WithOptions replaces the tunables. Zero fields fall back to defaults.
func WithOptions(o Options) Option {
	return func(c *Controller) { c.opts = o.withDefaults() }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l.With().Str("component", "swipe").Logger() }
}

// WithIDGenerator sets the decision id generator.
// Default: decision.UUIDv7Generator.
func WithIDGenerator(g decision.IDGenerator) Option {
	return func(c *Controller) { c.ids = g }
}

// WithNow sets the timestamp source for decisions.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithDetach sets how detached sends are started. The default runs each in
// its own goroutine; tests pass a synchronous runner.
func WithDetach(run func(task func())) Option {
	return func(c *Controller) { c.detach = run }
}
