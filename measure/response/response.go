package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-afx/dsp/buffer"
	"github.com/cwbudde/algo-afx/dsp/core"
)

// Errors returned by response analysis functions.
var (
	ErrEmptyResponse = errors.New("response: impulse response is empty")
	ErrFFTSize       = errors.New("response: fft size must be a power of two >= 2")
	ErrNoDecay       = errors.New("response: insufficient decay for decay time")
)

// Processor is anything that processes blocks in place and can be reset:
// an effect or a whole chain.
type Processor interface {
	ProcessBlock(block *buffer.Block) error
	Reset()
}

// Analyzer captures and measures impulse responses for one processing
// config.
type Analyzer struct {
	cfg  core.ProcessorConfig
	pool *buffer.Pool
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithPool draws the analyzer's scratch blocks from p. Analyzers for
// different configs may share one pool.
func WithPool(p *buffer.Pool) AnalyzerOption {
	return func(a *Analyzer) {
		if p != nil {
			a.pool = p
		}
	}
}

// NewAnalyzer creates an analyzer for cfg.
func NewAnalyzer(cfg core.ProcessorConfig, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.pool == nil {
		a.pool = buffer.NewPool()
	}
	return a
}

// Impulse resets p, feeds a unit impulse into channel 0 followed by
// silence in config-sized blocks, and returns length samples of channel 0.
// p is reset again afterwards.
func (a *Analyzer) Impulse(p Processor, length int) ([]float64, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	if length <= 0 {
		return nil, fmt.Errorf("response: length must be > 0: %d: %w", length, core.ErrInvalidParameter)
	}

	p.Reset()
	defer p.Reset()

	out := make([]float64, 0, length)
	block := a.pool.Get(a.cfg.Channels, a.cfg.BlockSize)
	defer a.pool.Put(block)

	for len(out) < length {
		frames := min(a.cfg.BlockSize, length-len(out))
		block.Resize(a.cfg.Channels, frames)
		if len(out) == 0 {
			block.Channel(0)[0] = 1
		}
		if err := p.ProcessBlock(block); err != nil {
			return nil, fmt.Errorf("response: block at %d: %w", len(out), err)
		}
		out = append(out, block.Channel(0)...)
	}

	return out, nil
}

// Energy returns the sum of squared samples.
func Energy(h []float64) float64 {
	return vecmath.DotProduct(h, h)
}

// PeakIndex returns the index of the largest absolute sample, or -1 for
// an empty response.
func PeakIndex(h []float64) int {
	peakIdx := -1
	peakVal := -1.0

	for i, v := range h {
		av := math.Abs(v)
		if av > peakVal {
			peakVal = av
			peakIdx = i
		}
	}

	return peakIdx
}

// DecayLength returns the index after which |h| stays below threshold, or
// -1 if the last sample is still at or above it.
func DecayLength(h []float64, threshold float64) int {
	for i := len(h) - 1; i >= 0; i-- {
		if math.Abs(h[i]) >= threshold {
			if i == len(h)-1 {
				return -1
			}
			return i + 1
		}
	}
	return 0
}

// SchroederIntegral computes the Schroeder backward integration of the
// squared impulse response, normalised to the total energy, in dB.
//
//	S(n) = 10*log10( sum_{k>=n} h²(k) / sum_k h²(k) )
func SchroederIntegral(h []float64) ([]float64, error) {
	if len(h) == 0 {
		return nil, ErrEmptyResponse
	}

	return schroederIntegral(h), nil
}

func schroederIntegral(h []float64) []float64 {
	n := len(h)
	result := make([]float64, n)

	var cumSum float64
	for i := n - 1; i >= 0; i-- {
		cumSum += h[i] * h[i]
		result[i] = cumSum
	}

	totalEnergy := result[0]
	if totalEnergy <= 0 {
		return result
	}

	for i := range result {
		ratio := result[i] / totalEnergy
		if ratio <= 0 {
			result[i] = -200 // floor at -200 dB
		} else {
			result[i] = 10 * math.Log10(ratio)
		}
	}

	return result
}

// DecayTime returns the time in seconds the response takes to decay by
// 60 dB, extrapolated from the -5..-35 dB span of the Schroeder curve
// (-5..-25 dB when the response is too short).
func (a *Analyzer) DecayTime(h []float64) (float64, error) {
	if len(h) == 0 {
		return 0, ErrEmptyResponse
	}

	schroeder := schroederIntegral(h)

	if rt := a.decayTime(schroeder, -5, -35); rt > 0 {
		return rt, nil
	}
	if rt := a.decayTime(schroeder, -5, -25); rt > 0 {
		return rt, nil
	}

	return 0, ErrNoDecay
}

// decayTime fits a line to the Schroeder curve between startDB and endDB
// and extrapolates it to -60 dB.
func (a *Analyzer) decayTime(schroeder []float64, startDB, endDB float64) float64 {
	startIdx := -1
	endIdx := -1

	for i, v := range schroeder {
		if startIdx < 0 && v <= startDB {
			startIdx = i
		}

		if startIdx >= 0 && v <= endDB {
			endIdx = i
			break
		}
	}

	if startIdx < 0 || endIdx <= startIdx {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64

	for i := startIdx; i <= endIdx; i++ {
		x := float64(i - startIdx)
		y := schroeder[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	nf := float64(endIdx - startIdx + 1)

	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	// dB per sample
	slope := (nf*sumXY - sumX*sumY) / denom
	if slope >= 0 {
		return 0
	}

	return -60.0 / (slope * a.cfg.SampleRate)
}

// MagnitudeResponse returns |H(k)| for bins 0..fftSize/2 of h, zero-padded
// or truncated to fftSize.
func MagnitudeResponse(h []float64, fftSize int) ([]float64, error) {
	if len(h) == 0 {
		return nil, ErrEmptyResponse
	}
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, fftSize)
	}

	in := make([]complex128, fftSize)
	for i := range min(len(h), fftSize) {
		in[i] = complex(h[i], 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}

	out := make([]complex128, fftSize)

	err = plan.Forward(out, in)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return mag, nil
}

// BinFrequency returns the centre frequency in Hz of bin k of an fftSize FFT.
func (a *Analyzer) BinFrequency(k, fftSize int) float64 {
	return float64(k) * a.cfg.SampleRate / float64(fftSize)
}
