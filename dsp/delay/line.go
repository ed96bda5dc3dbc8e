package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/interp"
)

// Line is a circular delay line with fractional-offset reads.
//
// Offset 0 addresses the most recently written sample and offset k the
// sample written k writes earlier, so a line of capacity C serves offsets
// 0..C-1. Until C samples have been written, offsets reaching past the
// written history read as silence.
type Line struct {
	buffer   []float64
	writePos int
	written  int
	mode     interp.Mode
}

// LineOption configures a Line.
type LineOption func(*Line)

// WithMode selects the interpolation kernel used by fractional reads.
// Unknown modes are ignored.
func WithMode(mode interp.Mode) LineOption {
	return func(l *Line) {
		if mode.Valid() {
			l.mode = mode
		}
	}
}

// New returns a delay line holding capacity samples.
func New(capacity int, opts ...LineOption) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay: capacity must be > 0: %d: %w", capacity, core.ErrInvalidParameter)
	}

	l := &Line{
		buffer: make([]float64, capacity),
		mode:   interp.Hermite,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l, nil
}

// Capacity returns the number of slots in the line.
func (l *Line) Capacity() int {
	return len(l.buffer)
}

// Mode returns the interpolation kernel.
func (l *Line) Mode() interp.Mode {
	return l.mode
}

// Written returns how many samples of history are valid, saturating at Capacity.
func (l *Line) Written() int {
	return l.written
}

// Warm reports whether the whole buffer holds written history.
func (l *Line) Warm() bool {
	return l.written == len(l.buffer)
}

// Write stores one sample at the write cursor, overwriting the oldest slot.
func (l *Line) Write(sample float64) {
	l.buffer[l.writePos] = sample
	l.writePos++
	if l.writePos == len(l.buffer) {
		l.writePos = 0
	}
	if l.written < len(l.buffer) {
		l.written++
	}
}

// Read returns the interpolated sample offset positions behind the newest one.
func (l *Line) Read(offset float64) (float64, error) {
	if err := l.checkOffset(offset); err != nil {
		return 0, err
	}
	return l.interpolate(offset), nil
}

// ReadStrict is Read for callers that must not observe warm-up silence: it
// fails with core.ErrNotReady when the samples straddling offset have not
// been written yet.
func (l *Line) ReadStrict(offset float64) (float64, error) {
	if err := l.checkOffset(offset); err != nil {
		return 0, err
	}
	if need := int(math.Ceil(offset)); need >= l.written {
		return 0, fmt.Errorf("delay: offset %g needs %d samples of history, have %d: %w",
			offset, need+1, l.written, core.ErrNotReady)
	}
	return l.interpolate(offset), nil
}

// Reset clears the history back to silence.
func (l *Line) Reset() {
	core.Zero(l.buffer)
	l.writePos = 0
	l.written = 0
}

func (l *Line) checkOffset(offset float64) error {
	if math.IsNaN(offset) || offset < 0 {
		return fmt.Errorf("delay: offset must be >= 0: %g: %w", offset, core.ErrInvalidParameter)
	}
	if offset > float64(len(l.buffer)-1) {
		return fmt.Errorf("delay: offset %g exceeds capacity %d: %w", offset, len(l.buffer), core.ErrOutOfRange)
	}
	return nil
}

func (l *Line) readClamped(offset float64) float64 {
	if last := float64(len(l.buffer) - 1); offset > last {
		offset = last
	}
	return l.interpolate(offset)
}

func (l *Line) interpolate(offset float64) float64 {
	p := int(offset)
	t := offset - float64(p)
	if t == 0 {
		return l.at(p)
	}

	x0 := l.at(p)
	x1 := l.at(p + 1)
	if l.mode == interp.Linear {
		return interp.Linear2(t, x0, x1)
	}

	return l.mode.Interpolate(t, l.at(p-1), x0, x1, l.at(p+2))
}

// at returns the sample at integer offset k. Neighbour taps beyond either
// end are clamped to the edge slot; unwritten history is silence.
func (l *Line) at(k int) float64 {
	size := len(l.buffer)
	if k < 0 {
		k = 0
	} else if k >= size {
		k = size - 1
	}
	if k >= l.written {
		return 0
	}

	idx := l.writePos - 1 - k
	if idx < 0 {
		idx += size
	}
	return l.buffer[idx]
}
