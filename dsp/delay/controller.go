package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-afx/dsp/core"
)

// GlideMode selects how a Controller moves between offsets.
type GlideMode int

const (
	// GlideLinear slews a single tap at a constant rate.
	GlideLinear GlideMode = iota
	// GlideCrossfade fades an old tap out and a new tap in with equal power.
	GlideCrossfade
)

// String returns the lower-case glide name.
func (g GlideMode) String() string {
	switch g {
	case GlideLinear:
		return "linear"
	case GlideCrossfade:
		return "crossfade"
	default:
		return fmt.Sprintf("GlideMode(%d)", int(g))
	}
}

// State is the controller state machine position.
type State int

const (
	// Idle means the offset is stable at its target.
	Idle State = iota
	// Transitioning means the offset is moving toward its target.
	Transitioning
)

// String returns the lower-case state name.
func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller) error

// WithGlide selects the glide curve. Default is GlideLinear.
func WithGlide(mode GlideMode) ControllerOption {
	return func(c *Controller) error {
		if mode != GlideLinear && mode != GlideCrossfade {
			return fmt.Errorf("delay: unknown glide mode %d: %w", int(mode), core.ErrInvalidParameter)
		}
		c.glide = mode
		return nil
	}
}

// WithMaxOffset bounds every offset the controller accepts, typically to
// Capacity()-1 of the line it will read.
func WithMaxOffset(maxOffset float64) ControllerOption {
	return func(c *Controller) error {
		if math.IsNaN(maxOffset) || maxOffset < 0 {
			return fmt.Errorf("delay: max offset must be >= 0: %g: %w", maxOffset, core.ErrInvalidParameter)
		}
		c.maxOffset = maxOffset
		return nil
	}
}

// Controller moves the read offset of a Line toward a target without
// discontinuities. It owns no buffer; Tick reads whichever Line it is given.
//
// A linear glide over N samples changes the offset by exactly Δ/N per
// sample and lands on the target. A crossfade keeps two taps alive and
// weights them with sqrt(1-k/N) and sqrt(k/N), so the summed power is
// constant and the energy-weighted offset also moves by Δ/N per sample.
type Controller struct {
	sampleRate float64
	glide      GlideMode
	maxOffset  float64

	current float64
	target  float64

	// linear glide
	step float64

	// transition progress, shared by both glides
	pos, length int

	// crossfade retarget latched until the running fade completes
	pending        bool
	pendingTarget  float64
	pendingSamples int
}

// NewController returns an idle controller resting at initialOffset.
func NewController(sampleRate, initialOffset float64, opts ...ControllerOption) (*Controller, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay: sample rate must be > 0 and finite: %f: %w", sampleRate, core.ErrInvalidParameter)
	}

	c := &Controller{
		sampleRate: sampleRate,
		glide:      GlideLinear,
		maxOffset:  math.Inf(1),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.checkOffset(initialOffset); err != nil {
		return nil, err
	}
	c.current = initialOffset
	c.target = initialOffset

	return c, nil
}

// Glide returns the glide curve.
func (c *Controller) Glide() GlideMode { return c.glide }

// MaxOffset returns the largest accepted offset.
func (c *Controller) MaxOffset() float64 { return c.maxOffset }

// Target returns the offset the controller is heading to. While a crossfade
// retarget is pending this is the pending target.
func (c *Controller) Target() float64 {
	if c.pending {
		return c.pendingTarget
	}
	return c.target
}

// State reports whether the controller is idle or transitioning.
func (c *Controller) State() State {
	if c.length > 0 || c.pending {
		return Transitioning
	}
	return Idle
}

// Remaining returns the number of samples left in the running transition,
// not counting a pending crossfade.
func (c *Controller) Remaining() int {
	return c.length - c.pos
}

// Offset returns the effective read offset. During a crossfade this is the
// power-weighted blend of both taps.
func (c *Controller) Offset() float64 {
	if c.glide == GlideCrossfade && c.length > 0 {
		x := float64(c.pos) / float64(c.length)
		return (1-x)*c.current + x*c.target
	}
	return c.current
}

// SetTargetOffset starts a transition toward value lasting
// transitionSeconds. A zero transition snaps on the next sample. Rejected
// requests leave the controller untouched.
func (c *Controller) SetTargetOffset(value, transitionSeconds float64) error {
	if err := c.checkOffset(value); err != nil {
		return err
	}
	if math.IsNaN(transitionSeconds) || math.IsInf(transitionSeconds, 0) || transitionSeconds < 0 {
		return fmt.Errorf("delay: transition time must be >= 0 and finite: %g: %w",
			transitionSeconds, core.ErrInvalidParameter)
	}

	n := int(math.Ceil(transitionSeconds * c.sampleRate))

	if c.glide == GlideCrossfade && c.length > 0 {
		c.pending = true
		c.pendingTarget = value
		c.pendingSamples = n
		return nil
	}

	c.start(value, n)
	return nil
}

// SetGlide switches the glide curve. A running transition restarts from
// the current effective offset toward Target over the samples it had left.
func (c *Controller) SetGlide(mode GlideMode) error {
	if mode != GlideLinear && mode != GlideCrossfade {
		return fmt.Errorf("delay: unknown glide mode %d: %w", int(mode), core.ErrInvalidParameter)
	}
	if mode == c.glide {
		return nil
	}

	offset, target := c.Offset(), c.Target()
	remaining := c.Remaining()
	if c.pending {
		remaining += c.pendingSamples
	}

	c.glide = mode
	c.current = offset
	c.target = offset
	c.step = 0
	c.pos, c.length = 0, 0
	c.pending = false
	c.start(target, remaining)
	return nil
}

// Reset snaps to offset and drops any transition.
func (c *Controller) Reset(offset float64) error {
	if err := c.checkOffset(offset); err != nil {
		return err
	}

	c.current = offset
	c.target = offset
	c.step = 0
	c.pos, c.length = 0, 0
	c.pending = false
	return nil
}

// Tick reads line at the current tap(s) and advances one sample. It fails
// with core.ErrOutOfRange when a tap lies beyond the line.
func (c *Controller) Tick(line *Line) (float64, error) {
	if err := line.checkOffset(c.current); err != nil {
		return 0, err
	}
	if c.glide == GlideCrossfade && c.length > 0 {
		if err := line.checkOffset(c.target); err != nil {
			return 0, err
		}
	}
	return c.Sample(line), nil
}

// Sample is Tick for callers that sized line to cover MaxOffset. Taps past
// the end of the line are clamped to its oldest slot.
func (c *Controller) Sample(line *Line) float64 {
	var out float64
	if c.glide == GlideCrossfade && c.length > 0 {
		gOld, gNew := crossfadeGains(float64(c.pos) / float64(c.length))
		out = gOld*line.readClamped(c.current) + gNew*line.readClamped(c.target)
	} else {
		out = line.readClamped(c.current)
	}

	c.Advance()
	return out
}

// Advance moves the transition forward by one sample without reading.
func (c *Controller) Advance() {
	if c.length == 0 {
		return
	}

	c.pos++
	if c.pos < c.length {
		if c.glide == GlideLinear {
			c.current += c.step
		}
		return
	}

	c.current = c.target
	c.step = 0
	c.pos, c.length = 0, 0

	if c.pending {
		c.pending = false
		c.start(c.pendingTarget, c.pendingSamples)
	}
}

func (c *Controller) start(value float64, n int) {
	c.pos = 0
	if n <= 0 || value == c.current {
		c.current = value
		c.target = value
		c.step = 0
		c.length = 0
		return
	}

	c.target = value
	c.length = n
	c.step = (value - c.current) / float64(n)
}

func (c *Controller) checkOffset(offset float64) error {
	if math.IsNaN(offset) || offset < 0 {
		return fmt.Errorf("delay: offset must be >= 0: %g: %w", offset, core.ErrInvalidParameter)
	}
	if offset > c.maxOffset {
		return fmt.Errorf("delay: offset %g exceeds max %g: %w", offset, c.maxOffset, core.ErrOutOfRange)
	}
	return nil
}
