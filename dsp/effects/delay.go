package effects

import (
	"math"

	"github.com/cwbudde/algo-afx/dsp/buffer"
	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/delay"
	"github.com/cwbudde/algo-afx/dsp/interp"
	"github.com/cwbudde/algo-afx/dsp/param"
)

const (
	defaultDelayMaxSeconds   = 2.0
	defaultDelayTimeSeconds  = 0.1
	defaultDelayGlideSeconds = 0.05
	maxGlideSeconds          = 1.0
)

// Delay parameter names.
const (
	ParamTime      = "time"
	ParamMix       = "mix"
	ParamGlide     = "glide"
	ParamGlideMode = "glideMode"
)

// Store.Apply delivers in table order, so the glide settings come first
// and a time change in the same block uses them.
const (
	delayGlide = iota
	delayGlideMode
	delayTime
	delayMix
)

// Delay is a feed-forward fractional delay with dry/wet mix.
//
// Each channel owns one Delay Line read through a Controller, so changes to
// time glide to the new offset instead of jumping.
type Delay struct {
	base

	lines []*delay.Line
	ctrls []*delay.Controller
	wet   []float64

	maxOffset float64
	mix       float64
	glide     float64
}

// NewDelay creates a delay for cfg. The default maximum delay is 2 s.
func NewDelay(cfg core.ProcessorConfig, opts ...Option) (*Delay, error) {
	o, err := applyOptions(defaultDelayMaxSeconds, interp.Hermite, opts)
	if err != nil {
		return nil, err
	}

	table, err := param.NewTable(
		param.Spec{Name: ParamGlide, Kind: param.Float, Min: 0, Max: maxGlideSeconds,
			Default: defaultDelayGlideSeconds, Unit: "s"},
		param.Spec{Name: ParamGlideMode, Kind: param.Enum,
			Options: []string{delay.GlideLinear.String(), delay.GlideCrossfade.String()}},
		param.Spec{Name: ParamTime, Kind: param.Float, Min: 0, Max: o.maxDelay,
			Default: math.Min(defaultDelayTimeSeconds, o.maxDelay), Unit: "s"},
		param.Spec{Name: ParamMix, Kind: param.Float, Min: 0, Max: 1, Default: 1},
	)
	if err != nil {
		return nil, err
	}

	b, err := newBase("delay", cfg, table)
	if err != nil {
		return nil, err
	}

	d := &Delay{
		base:      b,
		lines:     make([]*delay.Line, cfg.Channels),
		ctrls:     make([]*delay.Controller, cfg.Channels),
		wet:       make([]float64, cfg.BlockSize),
		maxOffset: math.Ceil(o.maxDelay * cfg.SampleRate),
	}

	initial := math.Min(table.At(delayTime).Default*cfg.SampleRate, d.maxOffset)
	for ch := range d.lines {
		d.lines[ch], err = delay.New(int(d.maxOffset)+1, delay.WithMode(o.mode))
		if err != nil {
			return nil, err
		}
		d.ctrls[ch], err = delay.NewController(cfg.SampleRate, initial, delay.WithMaxOffset(d.maxOffset))
		if err != nil {
			return nil, err
		}
	}

	d.mix = table.At(delayMix).Default
	d.glide = table.At(delayGlide).Default
	return d, nil
}

// ProcessBlock delays block in place. The block must match the config's
// channel count, hold at most BlockSize frames, and be finite; otherwise
// nothing is modified.
func (d *Delay) ProcessBlock(block *buffer.Block) error {
	if err := d.check(block); err != nil {
		return err
	}
	d.params.Apply(d.apply)
	d.primed = true

	frames := block.Frames()
	wet := d.wet[:frames]
	for ch := range d.lines {
		line, ctrl := d.lines[ch], d.ctrls[ch]
		in := block.Channel(ch)
		for i, x := range in {
			line.Write(x)
			wet[i] = ctrl.Sample(line)
		}
		mixInto(in, wet, d.mix)
	}
	return nil
}

// Reset clears every line and settles glides on their targets. Parameter
// values are kept.
func (d *Delay) Reset() {
	d.params.Apply(d.apply)
	for ch := range d.lines {
		d.lines[ch].Reset()
		_ = d.ctrls[ch].Reset(d.ctrls[ch].Target())
	}
	d.primed = false
}

// DelaySamples returns the effective delay of channel ch in samples.
func (d *Delay) DelaySamples(ch int) float64 {
	return d.ctrls[ch].Offset()
}

// MaxDelaySamples returns the longest reachable delay in samples.
func (d *Delay) MaxDelaySamples() float64 {
	return d.maxOffset
}

func (d *Delay) apply(i int, v float64) {
	switch i {
	case delayTime:
		offset := math.Min(v*d.cfg.SampleRate, d.maxOffset)
		for _, c := range d.ctrls {
			retarget(c, offset, d.glideSeconds(d.glide))
		}
	case delayMix:
		d.mix = v
	case delayGlide:
		d.glide = v
	case delayGlideMode:
		for _, c := range d.ctrls {
			_ = c.SetGlide(delay.GlideMode(v))
		}
	}
}
