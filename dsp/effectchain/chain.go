package effectchain

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-afx/dsp/buffer"
	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/param"
)

// ErrUnknownEffect is returned when a description names an unregistered effect type.
var ErrUnknownEffect = errors.New("unknown effect type")

// Effect is the capability set every chain member provides.
type Effect interface {
	Name() string
	Parameters() param.Table
	SetParameter(name string, value float64) error
	GetParameter(name string) (float64, error)
	ProcessBlock(block *buffer.Block) error
	Reset()
}

// configured is implemented by effects that report the config they were
// built for; the chain uses it to refuse mismatched members.
type configured interface {
	Config() core.ProcessorConfig
}

// StageError reports which chain member failed.
type StageError struct {
	Index  int
	Effect string
	// Param names the rejected parameter, if the failure was a parameter error.
	Param string
	Err   error
}

func (e *StageError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("effectchain: stage %d (%s) param %q: %v", e.Index, e.Effect, e.Param, e.Err)
	}
	return fmt.Sprintf("effectchain: stage %d (%s): %v", e.Index, e.Effect, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageError(index int, name string, err error) *StageError {
	se := &StageError{Index: index, Effect: name, Err: err}
	var perr *param.Error
	if errors.As(err, &perr) {
		se.Param = perr.Name
	}
	return se
}

type stage struct {
	effect   Effect
	bypassed bool
}

// Chain runs an ordered list of effects over each block, in place. Each
// member's output is the next member's input.
//
// A Chain is not safe for concurrent use. Structural edits (Append,
// Insert, Remove, SetBypass) must happen between ProcessBlock calls.
// SetParameter on a member may be called from any goroutine.
type Chain struct {
	cfg    core.ProcessorConfig
	stages []stage
}

// New creates an empty chain for cfg.
func New(cfg core.ProcessorConfig) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("effectchain: %w", err)
	}
	return &Chain{cfg: cfg}, nil
}

// Config returns the processing config every member shares.
func (c *Chain) Config() core.ProcessorConfig { return c.cfg }

// Len returns the number of members.
func (c *Chain) Len() int { return len(c.stages) }

// At returns the i-th member, or nil if i is out of range.
func (c *Chain) At(i int) Effect {
	if i < 0 || i >= len(c.stages) {
		return nil
	}
	return c.stages[i].effect
}

// Effects returns the members in processing order.
func (c *Chain) Effects() []Effect {
	out := make([]Effect, len(c.stages))
	for i, s := range c.stages {
		out[i] = s.effect
	}
	return out
}

// Append adds effects to the end of the chain. Either all are added or,
// if one is unusable, none.
func (c *Chain) Append(effects ...Effect) error {
	for i, e := range effects {
		if err := c.checkMember(e); err != nil {
			return fmt.Errorf("effectchain: append #%d: %w", i, err)
		}
	}
	for _, e := range effects {
		c.stages = append(c.stages, stage{effect: e})
	}
	return nil
}

// Insert places e before position i; i == Len appends.
func (c *Chain) Insert(i int, e Effect) error {
	if i < 0 || i > len(c.stages) {
		return fmt.Errorf("effectchain: insert position %d outside [0, %d]: %w", i, len(c.stages), core.ErrOutOfRange)
	}
	if err := c.checkMember(e); err != nil {
		return fmt.Errorf("effectchain: insert: %w", err)
	}

	c.stages = append(c.stages, stage{})
	copy(c.stages[i+1:], c.stages[i:])
	c.stages[i] = stage{effect: e}
	return nil
}

// Remove takes the i-th member out of the chain and returns it.
func (c *Chain) Remove(i int) (Effect, error) {
	if i < 0 || i >= len(c.stages) {
		return nil, fmt.Errorf("effectchain: remove index %d outside [0, %d): %w", i, len(c.stages), core.ErrOutOfRange)
	}

	e := c.stages[i].effect
	last := len(c.stages) - 1
	copy(c.stages[i:], c.stages[i+1:])
	c.stages[last] = stage{}
	c.stages = c.stages[:last]
	return e, nil
}

// SetBypass skips (true) or re-enables (false) the i-th member. A bypassed
// member keeps its state but sees no audio.
func (c *Chain) SetBypass(i int, bypassed bool) error {
	if i < 0 || i >= len(c.stages) {
		return fmt.Errorf("effectchain: bypass index %d outside [0, %d): %w", i, len(c.stages), core.ErrOutOfRange)
	}
	c.stages[i].bypassed = bypassed
	return nil
}

// Bypassed reports whether the i-th member is skipped.
func (c *Chain) Bypassed(i int) bool {
	return i >= 0 && i < len(c.stages) && c.stages[i].bypassed
}

// SetParameter sets a parameter on the i-th member.
func (c *Chain) SetParameter(i int, name string, value float64) error {
	if i < 0 || i >= len(c.stages) {
		return fmt.Errorf("effectchain: stage %d outside [0, %d): %w", i, len(c.stages), core.ErrOutOfRange)
	}

	e := c.stages[i].effect
	if err := e.SetParameter(name, value); err != nil {
		return stageError(i, e.Name(), err)
	}
	return nil
}

// ProcessBlock runs block through every active member in order. If a
// member fails, processing stops and a *StageError is returned; the block
// then holds the output of the members before it.
func (c *Chain) ProcessBlock(block *buffer.Block) error {
	if block == nil {
		return fmt.Errorf("effectchain: nil block: %w", core.ErrInvalidParameter)
	}
	if err := block.CheckFormat(c.cfg.Channels, c.cfg.BlockSize); err != nil {
		return fmt.Errorf("effectchain: %w", err)
	}

	for i, s := range c.stages {
		if s.bypassed {
			continue
		}
		if err := s.effect.ProcessBlock(block); err != nil {
			return stageError(i, s.effect.Name(), err)
		}
	}
	return nil
}

// Reset resets every member, bypassed or not.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.effect.Reset()
	}
}

func (c *Chain) checkMember(e Effect) error {
	if e == nil {
		return fmt.Errorf("nil effect: %w", core.ErrInvalidParameter)
	}
	for _, s := range c.stages {
		if s.effect == e {
			return fmt.Errorf("%s is already in the chain: %w", e.Name(), core.ErrInvalidParameter)
		}
	}
	if ce, ok := e.(configured); ok {
		if got := ce.Config(); got != c.cfg {
			return fmt.Errorf("%s built for %+v, chain runs %+v: %w", e.Name(), got, c.cfg, core.ErrInvalidParameter)
		}
	}
	return nil
}
