package feedback

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/delay"
	"github.com/cwbudde/algo-afx/dsp/interp"
)

const (
	// MaxStableFeedback is the largest feedback magnitude accepted by
	// default.
	MaxStableFeedback = 0.999
	// MaxUnstableFeedback bounds feedback when WithUnstableFeedback is set.
	MaxUnstableFeedback = 2.0
	// MaxMixGain bounds the feedforward and wet gains.
	MaxMixGain = 2.0

	defaultDelaySeconds = 0.1
	defaultFeedback     = 0.2
	defaultFeedforward  = 1.0
	defaultWet          = 0.25
)

// Option configures a Network at construction time.
type Option func(*Network) error

// WithFeedback sets the loop gain. It is validated after all options, so
// WithUnstableFeedback may appear anywhere in the list.
func WithFeedback(gain float64) Option {
	return func(n *Network) error {
		n.feedback = gain
		return nil
	}
}

// WithFeedforward sets the direct input gain (the dry level).
func WithFeedforward(gain float64) Option {
	return func(n *Network) error {
		if err := checkMixGain("feedforward", gain); err != nil {
			return err
		}
		n.feedforward = gain
		return nil
	}
}

// WithWet sets the gain of the delayed tap in the output.
func WithWet(gain float64) Option {
	return func(n *Network) error {
		if err := checkMixGain("wet", gain); err != nil {
			return err
		}
		n.wet = gain
		return nil
	}
}

// WithDelay sets the initial loop delay in seconds.
func WithDelay(seconds float64) Option {
	return func(n *Network) error {
		n.delaySeconds = seconds
		return nil
	}
}

// WithMode selects the tap interpolation. Linear is the default; its
// weights are convex, so the tap never exceeds the stored history.
func WithMode(mode interp.Mode) Option {
	return func(n *Network) error {
		if !mode.Valid() {
			return fmt.Errorf("feedback: unknown interpolation mode %d: %w", int(mode), core.ErrInvalidParameter)
		}
		n.mode = mode
		return nil
	}
}

// WithUnstableFeedback lifts the |feedback| < 1 rule up to
// MaxUnstableFeedback. The output may then grow without bound.
func WithUnstableFeedback() Option {
	return func(n *Network) error {
		n.allowUnstable = true
		return nil
	}
}

// Network is a feedback comb filter over one Delay Line.
type Network struct {
	sampleRate   float64
	capacity     int
	mode         interp.Mode
	delaySeconds float64

	feedback      float64
	feedforward   float64
	wet           float64
	allowUnstable bool

	line *delay.Line
	loop *delay.Controller

	recoveries int
}

// New creates a network able to delay up to maxDelaySeconds.
func New(sampleRate, maxDelaySeconds float64, opts ...Option) (*Network, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("feedback: sample rate must be > 0 and finite: %f: %w", sampleRate, core.ErrInvalidParameter)
	}
	if maxDelaySeconds <= 0 || math.IsNaN(maxDelaySeconds) || math.IsInf(maxDelaySeconds, 0) {
		return nil, fmt.Errorf("feedback: max delay must be > 0 and finite: %f: %w", maxDelaySeconds, core.ErrInvalidParameter)
	}

	n := &Network{
		sampleRate:   sampleRate,
		capacity:     max(1, int(math.Ceil(maxDelaySeconds*sampleRate))),
		mode:         interp.Linear,
		delaySeconds: math.Min(defaultDelaySeconds, maxDelaySeconds),
		feedback:     defaultFeedback,
		feedforward:  defaultFeedforward,
		wet:          defaultWet,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(n); err != nil {
			return nil, err
		}
	}

	if err := n.checkFeedback(n.feedback); err != nil {
		return nil, err
	}
	d, err := n.checkDelay(n.delaySeconds * sampleRate)
	if err != nil {
		return nil, err
	}

	n.line, err = delay.New(n.capacity, delay.WithMode(n.mode))
	if err != nil {
		return nil, err
	}
	n.loop, err = delay.NewController(sampleRate, d-1, delay.WithMaxOffset(float64(n.capacity-1)))
	if err != nil {
		return nil, err
	}

	return n, nil
}

// ProcessSample runs one sample through the comb.
func (n *Network) ProcessSample(x float64) float64 {
	tap := n.loop.Sample(n.line)
	y := n.feedforward*x + n.wet*tap

	w := x + n.feedback*tap
	if !core.IsFinite(w) {
		// One NaN or Inf in the loop would recirculate forever.
		n.line.Reset()
		n.recoveries++
		w = 0
	}
	n.line.Write(core.FlushDenormals(w))

	return y
}

// ProcessInPlace runs buf through the comb in place.
func (n *Network) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = n.ProcessSample(buf[i])
	}
}

// Reset clears the loop history and settles any delay glide on its target.
func (n *Network) Reset() {
	n.line.Reset()
	_ = n.loop.Reset(n.loop.Target())
}

// SetFeedback sets the loop gain.
func (n *Network) SetFeedback(gain float64) error {
	if err := n.checkFeedback(gain); err != nil {
		return err
	}
	n.feedback = gain
	return nil
}

// SetFeedforward sets the direct input gain.
func (n *Network) SetFeedforward(gain float64) error {
	if err := checkMixGain("feedforward", gain); err != nil {
		return err
	}
	n.feedforward = gain
	return nil
}

// SetWet sets the delayed tap gain.
func (n *Network) SetWet(gain float64) error {
	if err := checkMixGain("wet", gain); err != nil {
		return err
	}
	n.wet = gain
	return nil
}

// SetDelaySamples jumps to a loop delay of d samples, 1 <= d <= MaxDelaySamples.
func (n *Network) SetDelaySamples(d float64) error {
	return n.SetTargetDelaySamples(d, 0)
}

// SetDelaySeconds jumps to a loop delay given in seconds.
func (n *Network) SetDelaySeconds(seconds float64) error {
	return n.SetDelaySamples(seconds * n.sampleRate)
}

// SetTargetDelay glides the loop delay to seconds over transitionSeconds.
func (n *Network) SetTargetDelay(seconds, transitionSeconds float64) error {
	return n.SetTargetDelaySamples(seconds*n.sampleRate, transitionSeconds)
}

// SetTargetDelaySamples glides the loop delay to d samples over
// transitionSeconds.
func (n *Network) SetTargetDelaySamples(d, transitionSeconds float64) error {
	d, err := n.checkDelay(d)
	if err != nil {
		return err
	}
	return n.loop.SetTargetOffset(d-1, transitionSeconds)
}

// SampleRate returns the sample rate in Hz.
func (n *Network) SampleRate() float64 { return n.sampleRate }

// Feedback returns the loop gain.
func (n *Network) Feedback() float64 { return n.feedback }

// Feedforward returns the direct input gain.
func (n *Network) Feedforward() float64 { return n.feedforward }

// Wet returns the delayed tap gain.
func (n *Network) Wet() float64 { return n.wet }

// DelaySamples returns the current loop delay in samples.
func (n *Network) DelaySamples() float64 { return n.loop.Offset() + 1 }

// TargetDelaySamples returns the loop delay being glided to.
func (n *Network) TargetDelaySamples() float64 { return n.loop.Target() + 1 }

// MaxDelaySamples returns the longest loop delay the line can hold.
func (n *Network) MaxDelaySamples() int { return n.capacity }

// Mode returns the tap interpolation mode.
func (n *Network) Mode() interp.Mode { return n.mode }

// Stable reports whether |feedback| < 1.
func (n *Network) Stable() bool { return math.Abs(n.feedback) < 1 }

// AllowsUnstable reports whether WithUnstableFeedback was given.
func (n *Network) AllowsUnstable() bool { return n.allowUnstable }

// Recoveries returns how many times a non-finite loop value forced the
// line to be cleared.
func (n *Network) Recoveries() int { return n.recoveries }

// FeedbackLimit returns the largest accepted |feedback|.
func (n *Network) FeedbackLimit() float64 {
	if n.allowUnstable {
		return MaxUnstableFeedback
	}
	return MaxStableFeedback
}

func (n *Network) checkFeedback(gain float64) error {
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		return fmt.Errorf("feedback: gain must be finite: %f: %w", gain, core.ErrInvalidParameter)
	}
	if !n.allowUnstable && math.Abs(gain) >= 1 {
		return fmt.Errorf("feedback: |gain| must be < 1 without the unstable override: %f: %w",
			gain, core.ErrInvalidParameter)
	}
	if limit := n.FeedbackLimit(); math.Abs(gain) > limit {
		return fmt.Errorf("feedback: gain must be in [-%g, %g]: %f: %w", limit, limit, gain, core.ErrInvalidParameter)
	}
	return nil
}

func (n *Network) checkDelay(d float64) (float64, error) {
	if math.IsNaN(d) || d < 1 {
		return 0, fmt.Errorf("feedback: loop delay must be >= 1 sample: %g: %w", d, core.ErrInvalidParameter)
	}
	if d > float64(n.capacity) {
		return 0, fmt.Errorf("feedback: loop delay %g exceeds %d samples: %w", d, n.capacity, core.ErrOutOfRange)
	}
	return d, nil
}

func checkMixGain(name string, gain float64) error {
	if math.IsNaN(gain) || math.IsInf(gain, 0) || math.Abs(gain) > MaxMixGain {
		return fmt.Errorf("feedback: %s gain must be in [-%g, %g]: %f: %w",
			name, MaxMixGain, MaxMixGain, gain, core.ErrInvalidParameter)
	}
	return nil
}
