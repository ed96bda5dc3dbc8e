package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/interp"
)

// Option configures an effect at construction time. Options that do not
// apply to an effect are ignored by it.
type Option func(*options) error

type options struct {
	maxDelay float64
	mode     interp.Mode
	modeSet  bool
	unstable bool
}

// WithMaxDelay sets the longest delay time in seconds the effect can
// reach, and so the size of its delay lines.
func WithMaxDelay(seconds float64) Option {
	return func(o *options) error {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("effects: max delay must be > 0 and finite: %f: %w", seconds, core.ErrInvalidParameter)
		}
		o.maxDelay = seconds
		return nil
	}
}

// WithInterpolation selects the fractional-delay kernel.
func WithInterpolation(mode interp.Mode) Option {
	return func(o *options) error {
		if !mode.Valid() {
			return fmt.Errorf("effects: unknown interpolation mode %d: %w", int(mode), core.ErrInvalidParameter)
		}
		o.mode = mode
		o.modeSet = true
		return nil
	}
}

// WithUnstableFeedback lets Echo accept |feedback| >= 1.
func WithUnstableFeedback() Option {
	return func(o *options) error {
		o.unstable = true
		return nil
	}
}

func applyOptions(maxDelay float64, mode interp.Mode, opts []Option) (options, error) {
	o := options{maxDelay: maxDelay, mode: mode}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return options{}, err
		}
	}
	return o, nil
}
