// Package interp provides interpolation kernels used by fractional delay lines.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:   2-point linear interpolation
//   - [Hermite4]:  4-point cubic Hermite (good default)
//   - [Lagrange4]: 4-point cubic Lagrange
//
// Every kernel returns x0 exactly at t = 0 and preserves DC, so a delay
// read at an integer offset is an exact copy of the stored sample.
//
// The [Mode] enum selects a kernel at construction time of a delay line.
package interp
