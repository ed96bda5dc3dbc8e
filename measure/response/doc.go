// Package response measures how an effect responds to a unit impulse.
//
// The Analyzer captures an impulse response by streaming an impulse
// through any block processor and derives time-domain metrics from it:
//
//   - Energy, PeakIndex: total energy and main arrival
//   - DecayLength: samples until the response stays below a threshold
//   - DecayTime: -60 dB decay time from the Schroeder backward integral
//   - MagnitudeResponse: |H(f)| from an FFT of the response
//
// # Usage
//
//	a := response.NewAnalyzer(cfg)
//	h, err := a.Impulse(echo, 48000)
//	rt, err := a.DecayTime(h)
package response
