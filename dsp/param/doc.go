// Package param describes the named parameters an effect exposes and hands
// parameter changes from control goroutines to the audio goroutine.
//
// A Table declares each parameter's kind, range, and default. A Store
// validates writes synchronously on the caller's goroutine and publishes
// them through atomics; the audio goroutine picks them up with Apply at
// the start of the next block, so a block is always processed with one
// consistent set of values.
package param
