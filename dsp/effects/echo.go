package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-afx/dsp/buffer"
	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/feedback"
	"github.com/cwbudde/algo-afx/dsp/interp"
	"github.com/cwbudde/algo-afx/dsp/param"
)

const (
	defaultEchoMaxSeconds  = 1.0
	defaultEchoTimeSeconds = 0.1
	defaultEchoFeedback    = 0.2
	defaultEchoDry         = 1.0
	defaultEchoWet         = 0.25
	minEchoTimeSeconds     = 0.001
)

// Echo parameter names. Echo also uses ParamTime and ParamGlide.
const (
	ParamFeedback = "feedback"
	ParamDry      = "dry"
	ParamWet      = "wet"
)

// Glide precedes time so Store.Apply delivers it first.
const (
	echoGlide = iota
	echoTime
	echoFeedback
	echoDry
	echoWet
)

// Echo is a feedback delay: every repeat is the previous one scaled by
// feedback. Each channel runs its own feedback.Network.
type Echo struct {
	base

	nets     []*feedback.Network
	maxDelay float64
	glide    float64
}

// NewEcho creates an echo for cfg. The default maximum delay is 1 s and the
// loop tap is read with linear interpolation unless WithInterpolation says
// otherwise. |feedback| stays below 1 unless WithUnstableFeedback is given.
func NewEcho(cfg core.ProcessorConfig, opts ...Option) (*Echo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("echo: %w", err)
	}
	o, err := applyOptions(defaultEchoMaxSeconds, interp.Linear, opts)
	if err != nil {
		return nil, err
	}

	fbLimit := feedback.MaxStableFeedback
	if o.unstable {
		fbLimit = feedback.MaxUnstableFeedback
	}
	minTime := math.Min(math.Max(minEchoTimeSeconds, 1/cfg.SampleRate), o.maxDelay)

	table, err := param.NewTable(
		param.Spec{Name: ParamGlide, Kind: param.Float, Min: 0, Max: maxGlideSeconds,
			Default: defaultDelayGlideSeconds, Unit: "s"},
		param.Spec{Name: ParamTime, Kind: param.Float, Min: minTime, Max: o.maxDelay,
			Default: core.Clamp(defaultEchoTimeSeconds, minTime, o.maxDelay), Unit: "s"},
		param.Spec{Name: ParamFeedback, Kind: param.Float, Min: -fbLimit, Max: fbLimit,
			Default: defaultEchoFeedback},
		param.Spec{Name: ParamDry, Kind: param.Float, Min: 0, Max: feedback.MaxMixGain,
			Default: defaultEchoDry},
		param.Spec{Name: ParamWet, Kind: param.Float, Min: 0, Max: feedback.MaxMixGain,
			Default: defaultEchoWet},
	)
	if err != nil {
		return nil, err
	}

	b, err := newBase("echo", cfg, table)
	if err != nil {
		return nil, err
	}

	e := &Echo{
		base:     b,
		nets:     make([]*feedback.Network, cfg.Channels),
		maxDelay: o.maxDelay,
		glide:    table.At(echoGlide).Default,
	}

	netOpts := []feedback.Option{
		feedback.WithMode(o.mode),
		feedback.WithDelay(table.At(echoTime).Default),
		feedback.WithFeedback(table.At(echoFeedback).Default),
		feedback.WithFeedforward(table.At(echoDry).Default),
		feedback.WithWet(table.At(echoWet).Default),
	}
	if o.unstable {
		netOpts = append(netOpts, feedback.WithUnstableFeedback())
	}
	for ch := range e.nets {
		e.nets[ch], err = feedback.New(cfg.SampleRate, o.maxDelay, netOpts...)
		if err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ProcessBlock runs block through the echo in place. Malformed or
// non-finite blocks are rejected untouched.
func (e *Echo) ProcessBlock(block *buffer.Block) error {
	if err := e.check(block); err != nil {
		return err
	}
	e.params.Apply(e.apply)
	e.primed = true

	for ch, net := range e.nets {
		net.ProcessInPlace(block.Channel(ch))
	}
	return nil
}

// Reset silences every feedback loop. Parameter values are kept.
func (e *Echo) Reset() {
	e.params.Apply(e.apply)
	for _, net := range e.nets {
		net.Reset()
	}
	e.primed = false
}

// Network returns the feedback network of channel ch.
func (e *Echo) Network(ch int) *feedback.Network {
	return e.nets[ch]
}

// Recoveries returns how often a non-finite loop value was flushed, summed
// over all channels.
func (e *Echo) Recoveries() int {
	n := 0
	for _, net := range e.nets {
		n += net.Recoveries()
	}
	return n
}

func (e *Echo) apply(i int, v float64) {
	for _, net := range e.nets {
		var err error
		switch i {
		case echoTime:
			d := core.Clamp(v*e.cfg.SampleRate, 1, float64(net.MaxDelaySamples()))
			err = net.SetTargetDelaySamples(d, e.glideSeconds(e.glide))
		case echoFeedback:
			err = net.SetFeedback(v)
		case echoDry:
			err = net.SetFeedforward(v)
		case echoWet:
			err = net.SetWet(v)
		case echoGlide:
			e.glide = v
		}
		if err != nil {
			panic("effects: validated echo parameter rejected: " + err.Error())
		}
	}
}
