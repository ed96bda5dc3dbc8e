package effects

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-afx/dsp/buffer"
	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/delay"
	"github.com/cwbudde/algo-afx/dsp/param"
)

// base carries what every effect shares: the processing config, the
// parameter store, and the checks run before a block is touched.
type base struct {
	name   string
	cfg    core.ProcessorConfig
	params *param.Store

	// primed is false until the first block after construction or Reset;
	// parameter changes before that take effect without gliding.
	primed bool
}

func newBase(name string, cfg core.ProcessorConfig, table param.Table) (base, error) {
	if err := cfg.Validate(); err != nil {
		return base{}, fmt.Errorf("%s: %w", name, err)
	}
	return base{name: name, cfg: cfg, params: param.NewStore(table)}, nil
}

// Name returns the effect type name.
func (b *base) Name() string { return b.name }

// Config returns the processing config the effect was built for.
func (b *base) Config() core.ProcessorConfig { return b.cfg }

// Parameters returns the declared parameter table.
func (b *base) Parameters() param.Table { return b.params.Table() }

// SetParameter validates value and schedules it for the next block
// boundary. It is safe to call from any goroutine. A rejected value
// changes nothing.
func (b *base) SetParameter(name string, value float64) error {
	if err := b.params.Set(name, value); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	return nil
}

// GetParameter returns the most recently set value of name.
func (b *base) GetParameter(name string) (float64, error) {
	v, err := b.params.Get(name)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", b.name, err)
	}
	return v, nil
}

// check rejects blocks that do not fit the config or carry NaN/Inf.
func (b *base) check(block *buffer.Block) error {
	if block == nil {
		return fmt.Errorf("%s: nil block: %w", b.name, core.ErrInvalidParameter)
	}
	if err := block.CheckFormat(b.cfg.Channels, b.cfg.BlockSize); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	if err := block.CheckFinite(); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	return nil
}

// glideSeconds returns how long a retarget should take: zero until the
// effect has processed audio.
func (b *base) glideSeconds(seconds float64) float64 {
	if !b.primed {
		return 0
	}
	return seconds
}

// retarget moves c to offset, which the caller has clamped to c's range.
func retarget(c *delay.Controller, offset, seconds float64) {
	if err := c.SetTargetOffset(offset, seconds); err != nil {
		panic(fmt.Sprintf("effects: validated offset rejected: %v", err))
	}
}

// mixInto writes (1-mix)*dry + mix*wet into dry. wet is used as scratch.
func mixInto(dry, wet []float64, mix float64) {
	switch mix {
	case 0:
		return
	case 1:
		copy(dry, wet)
		return
	}
	vecmath.ScaleBlockInPlace(dry, 1-mix)
	vecmath.ScaleBlockInPlace(wet, mix)
	vecmath.AddBlockInPlace(dry, wet)
}
