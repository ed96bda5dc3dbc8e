// Package delay provides a circular fractional delay line and a controller
// that glides its read offset between targets without clicks.
//
// Offsets count backwards from the newest sample: offset 0 is the sample
// just written. A feed-forward delay of D samples writes first and then
// reads offset D; a recursive loop of D samples reads offset D-1 before
// writing.
package delay
