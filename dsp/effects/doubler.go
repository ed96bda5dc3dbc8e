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
	doublerMinDelay     = 0.005
	doublerMaxDelay     = 0.05
	doublerMaxDepth     = 0.01
	doublerMinRate      = 0.05
	doublerMaxRate      = 5.0
	defaultDoublerDelay = 0.02
	defaultDoublerDepth = 0.003
	defaultDoublerRate  = 0.35
	defaultDoublerMix   = 0.5
)

// Doubler parameter names. Doubler also uses ParamMix.
const (
	ParamDelay = "delay"
	ParamDepth = "depth"
	ParamRate  = "rate"
)

const (
	doublerDelay = iota
	doublerDepth
	doublerRate
	doublerMix
)

// Doubler thickens a signal with a slowly wandering short delay mixed
// under the dry signal. The delay is retargeted once per block and glides
// across it, so modulation never steps inside a block. Channels are swept
// a quarter cycle apart.
type Doubler struct {
	base

	lines []*delay.Line
	ctrls []*delay.Controller
	wet   []float64

	maxOffset float64
	delay     float64
	depth     float64
	rate      float64
	mix       float64
	phase     float64
}

// NewDoubler creates a doubler for cfg. Only WithInterpolation applies.
func NewDoubler(cfg core.ProcessorConfig, opts ...Option) (*Doubler, error) {
	o, err := applyOptions(doublerMaxDelay+doublerMaxDepth, interp.Hermite, opts)
	if err != nil {
		return nil, err
	}

	table, err := param.NewTable(
		param.Spec{Name: ParamDelay, Kind: param.Float, Min: doublerMinDelay, Max: doublerMaxDelay,
			Default: defaultDoublerDelay, Unit: "s"},
		param.Spec{Name: ParamDepth, Kind: param.Float, Min: 0, Max: doublerMaxDepth,
			Default: defaultDoublerDepth, Unit: "s"},
		param.Spec{Name: ParamRate, Kind: param.Float, Min: doublerMinRate, Max: doublerMaxRate,
			Default: defaultDoublerRate, Unit: "Hz"},
		param.Spec{Name: ParamMix, Kind: param.Float, Min: 0, Max: 1, Default: defaultDoublerMix},
	)
	if err != nil {
		return nil, err
	}

	b, err := newBase("doubler", cfg, table)
	if err != nil {
		return nil, err
	}

	d := &Doubler{
		base:      b,
		lines:     make([]*delay.Line, cfg.Channels),
		ctrls:     make([]*delay.Controller, cfg.Channels),
		wet:       make([]float64, cfg.BlockSize),
		maxOffset: math.Ceil((doublerMaxDelay + doublerMaxDepth) * cfg.SampleRate),
		delay:     defaultDoublerDelay,
		depth:     defaultDoublerDepth,
		rate:      defaultDoublerRate,
		mix:       defaultDoublerMix,
	}

	for ch := range d.lines {
		d.lines[ch], err = delay.New(int(d.maxOffset)+1, delay.WithMode(o.mode))
		if err != nil {
			return nil, err
		}
		d.ctrls[ch], err = delay.NewController(cfg.SampleRate, d.offset(ch),
			delay.WithMaxOffset(d.maxOffset))
		if err != nil {
			return nil, err
		}
	}

	return d, nil
}

// ProcessBlock doubles block in place.
func (d *Doubler) ProcessBlock(block *buffer.Block) error {
	if err := d.check(block); err != nil {
		return err
	}
	d.params.Apply(d.apply)

	frames := block.Frames()
	if frames == 0 {
		return nil
	}

	span := float64(frames) / d.cfg.SampleRate
	d.phase = math.Mod(d.phase+2*math.Pi*d.rate*span, 2*math.Pi)

	wet := d.wet[:frames]
	for ch := range d.lines {
		line, ctrl := d.lines[ch], d.ctrls[ch]
		retarget(ctrl, d.offset(ch), d.glideSeconds(span))

		in := block.Channel(ch)
		for i, x := range in {
			line.Write(x)
			wet[i] = ctrl.Sample(line)
		}
		mixInto(in, wet, d.mix)
	}
	d.primed = true
	return nil
}

// Reset clears the lines and restarts the sweep.
func (d *Doubler) Reset() {
	d.params.Apply(d.apply)
	d.phase = 0
	for ch := range d.lines {
		d.lines[ch].Reset()
		_ = d.ctrls[ch].Reset(d.offset(ch))
	}
	d.primed = false
}

// DelaySamples returns the effective delay of channel ch in samples.
func (d *Doubler) DelaySamples(ch int) float64 {
	return d.ctrls[ch].Offset()
}

// offset is the sweep position of channel ch in samples.
func (d *Doubler) offset(ch int) float64 {
	lfo := 0.5 * (1 + math.Sin(d.phase+float64(ch)*math.Pi/2))
	return math.Min((d.delay+d.depth*lfo)*d.cfg.SampleRate, d.maxOffset)
}

func (d *Doubler) apply(i int, v float64) {
	switch i {
	case doublerDelay:
		d.delay = v
	case doublerDepth:
		d.depth = v
	case doublerRate:
		d.rate = v
	case doublerMix:
		d.mix = v
	}
}
