package interp

import (
	"fmt"
	"strings"
)

// Mode identifies an interpolation kernel.
type Mode int

const (
	// Linear blends the two neighbouring samples.
	Linear Mode = iota
	// Hermite is 4-point cubic Hermite (Catmull-Rom) interpolation.
	Hermite
	// Lagrange3 is 4-point third-order Lagrange interpolation.
	Lagrange3
)

// Modes lists every supported mode in enum order.
func Modes() []Mode {
	return []Mode{Linear, Hermite, Lagrange3}
}

// Taps returns the number of neighbouring samples the kernel reads.
func (m Mode) Taps() int {
	if m == Linear {
		return 2
	}
	return 4
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	case Lagrange3:
		return "lagrange3"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= Linear && m <= Lagrange3
}

// ParseMode resolves a mode name as returned by [Mode.String].
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes() {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("interp: unknown mode %q", name)
}

// Linear2 interpolates between x0 (t=0) and x1 (t=1).
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// Lagrange4 computes third-order Lagrange interpolation through the points
// at positions -1, 0, 1, 2, evaluated at t in [0, 1].
func Lagrange4(t, xm1, x0, x1, x2 float64) float64 {
	tp1 := t + 1
	tm1 := t - 1
	tm2 := t - 2

	cm1 := -t * tm1 * tm2 / 6
	c0 := tp1 * tm1 * tm2 / 2
	c1 := -tp1 * t * tm2 / 2
	c2 := tp1 * t * tm1 / 6

	return cm1*xm1 + c0*x0 + c1*x1 + c2*x2
}

// Interpolate evaluates the kernel selected by m. Linear ignores xm1 and x2.
func (m Mode) Interpolate(t, xm1, x0, x1, x2 float64) float64 {
	switch m {
	case Hermite:
		return Hermite4(t, xm1, x0, x1, x2)
	case Lagrange3:
		return Lagrange4(t, xm1, x0, x1, x2)
	default:
		return Linear2(t, x0, x1)
	}
}
