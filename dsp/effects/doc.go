// Package effects provides block-based audio effects built on delay lines.
//
// Effects in this package:
//   - Delay: feed-forward fractional delay with dry/wet mix and glided time changes.
//   - Echo: feedback delay with decaying repeats, one feedback.Network per channel.
//   - Doubler: short modulated delay mixed under the dry signal.
//
// Every effect is built for one core.ProcessorConfig and processes planar
// buffer.Block values in place. Parameters are declared in a param.Table;
// SetParameter may be called from any goroutine and takes effect at the
// next block boundary. Until the first block after construction or Reset,
// time changes apply immediately instead of gliding.
//
// ProcessBlock rejects blocks with the wrong channel count, more than
// BlockSize frames, or NaN/Inf samples, and leaves both the block and the
// effect untouched in that case.
package effects
