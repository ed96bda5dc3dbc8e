package delay

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/interp"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func mustRead(t *testing.T, l *Line, offset float64) float64 {
	t.Helper()

	v, err := l.Read(offset)
	if err != nil {
		t.Fatalf("Read(%v): %v", offset, err)
	}
	return v
}

// fillRamp fills a delay line with a linear ramp [0, 1, 2, ..., capacity-1].
func fillRamp(l *Line) {
	for i := 0; i < l.Capacity(); i++ {
		l.Write(float64(i))
	}
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := New(capacity); !errors.Is(err, core.ErrInvalidParameter) {
			t.Fatalf("New(%d) error = %v, want ErrInvalidParameter", capacity, err)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	l, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if l.Capacity() != 16 {
		t.Fatalf("Capacity: got %d want 16", l.Capacity())
	}
	if l.Mode() != interp.Hermite {
		t.Fatalf("default mode: got %v want hermite", l.Mode())
	}
	if l.Written() != 0 || l.Warm() {
		t.Fatalf("fresh line: written=%d warm=%v", l.Written(), l.Warm())
	}
}

func TestNewWithOptions(t *testing.T) {
	l, err := New(16, WithMode(interp.Linear), nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Mode() != interp.Linear {
		t.Fatalf("mode: got %v want linear", l.Mode())
	}

	l, err = New(16, WithMode(interp.Mode(42)))
	if err != nil {
		t.Fatal(err)
	}
	if l.Mode() != interp.Hermite {
		t.Fatalf("unknown mode should be ignored, got %v", l.Mode())
	}
}

// --- integer Read/Write ---

func TestReadWrite(t *testing.T) {
	l, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		l.Write(float64(i))
	}
	// offset 0 => most recently written (7)
	if got := mustRead(t, l, 0); got != 7 {
		t.Fatalf("got %v want 7", got)
	}
	if got := mustRead(t, l, 3); got != 4 {
		t.Fatalf("got %v want 4", got)
	}
	if got := mustRead(t, l, 7); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
}

func TestReadWraparound(t *testing.T) {
	l, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		l.Write(float64(i))
	}
	// buffer holds [8, 9, 6, 7], writePos=2
	if got := mustRead(t, l, 0); got != 9 {
		t.Fatalf("got %v want 9", got)
	}
	if got := mustRead(t, l, 3); got != 6 {
		t.Fatalf("got %v want 6", got)
	}
	if l.Written() != 4 {
		t.Fatalf("written counter should saturate at capacity, got %d", l.Written())
	}
}

func TestImpulseEmergesAtOffset(t *testing.T) {
	l, err := New(32)
	if err != nil {
		t.Fatal(err)
	}

	const offset = 11
	for n := 0; n < 32; n++ {
		x := 0.0
		if n == 0 {
			x = 1
		}
		l.Write(x)

		want := 0.0
		if n == offset {
			want = 1
		}
		if got := mustRead(t, l, offset); got != want {
			t.Fatalf("n=%d: got %v want %v", n, got, want)
		}
	}
}

func TestReset(t *testing.T) {
	l, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	l.Write(1)
	l.Write(2)
	l.Reset()

	if l.Written() != 0 {
		t.Fatalf("written after reset: %d", l.Written())
	}
	for i := 0; i < 4; i++ {
		if got := mustRead(t, l, float64(i)); got != 0 {
			t.Fatalf("after reset Read(%d): got %v want 0", i, got)
		}
	}
}

// --- bounds ---

func TestReadBounds(t *testing.T) {
	l, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	fillRamp(l)

	tests := []struct {
		name   string
		offset float64
		want   error
	}{
		{name: "last slot", offset: 7},
		{name: "capacity", offset: 8, want: core.ErrOutOfRange},
		{name: "between last slot and capacity", offset: 7.5, want: core.ErrOutOfRange},
		{name: "inf", offset: math.Inf(1), want: core.ErrOutOfRange},
		{name: "negative", offset: -0.1, want: core.ErrInvalidParameter},
		{name: "nan", offset: math.NaN(), want: core.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Read(tt.offset)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Read(%v) = %v, want nil", tt.offset, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Read(%v) = %v, want %v", tt.offset, err, tt.want)
			}
		})
	}
}

func TestReadNearEdgeClampsNeighbours(t *testing.T) {
	l, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	fillRamp(l)

	// Offsets 6 and 7 hold 1 and 0; the Hermite x2 tap falls outside and is clamped.
	got := mustRead(t, l, 6.5)
	if math.IsNaN(got) || got < 0 || got > 1 {
		t.Fatalf("Read(6.5) = %v, want within [0, 1]", got)
	}

	// Offset 0.5 needs a tap newer than the newest sample; it is clamped too.
	got = mustRead(t, l, 0.5)
	if math.IsNaN(got) || got < 6 || got > 7 {
		t.Fatalf("Read(0.5) = %v, want within [6, 7]", got)
	}
}

// --- warm-up ---

func TestWarmUpReadsSilence(t *testing.T) {
	l, err := New(8, WithMode(interp.Linear))
	if err != nil {
		t.Fatal(err)
	}

	l.Write(1)
	l.Write(2)

	if got := mustRead(t, l, 1); got != 1 {
		t.Fatalf("Read(1) = %v, want 1", got)
	}
	if got := mustRead(t, l, 2); got != 0 {
		t.Fatalf("Read(2) = %v, want 0 before warm-up", got)
	}
	if got := mustRead(t, l, 1.5); !approxEqual(got, 0.5, 1e-12) {
		t.Fatalf("Read(1.5) = %v, want 0.5", got)
	}
	if l.Warm() {
		t.Fatal("line reported warm after 2 of 8 writes")
	}
}

func TestWarmUpIsTrackedNotInferred(t *testing.T) {
	l, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	fillRamp(l)
	if !l.Warm() {
		t.Fatal("line should be warm after capacity writes")
	}

	// Writing zeros keeps the line warm: silence in history is real data.
	for i := 0; i < 4; i++ {
		l.Write(0)
	}
	if !l.Warm() {
		t.Fatal("line should stay warm")
	}
	if _, err := l.ReadStrict(3); err != nil {
		t.Fatalf("ReadStrict on warm line: %v", err)
	}
}

func TestReadStrict(t *testing.T) {
	l, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := l.ReadStrict(0); !errors.Is(err, core.ErrNotReady) {
		t.Fatalf("ReadStrict on empty line = %v, want ErrNotReady", err)
	}

	l.Write(1)
	l.Write(2)

	if got, err := l.ReadStrict(1); err != nil || got != 1 {
		t.Fatalf("ReadStrict(1) = %v, %v; want 1, nil", got, err)
	}
	if _, err := l.ReadStrict(1.5); !errors.Is(err, core.ErrNotReady) {
		t.Fatalf("ReadStrict(1.5) = %v, want ErrNotReady", err)
	}
	if _, err := l.ReadStrict(8); !errors.Is(err, core.ErrOutOfRange) {
		t.Fatalf("ReadStrict(8) = %v, want ErrOutOfRange", err)
	}
}

// --- fractional reads ---

func TestReadFractionalRamp(t *testing.T) {
	for _, mode := range interp.Modes() {
		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			l, err := New(32, WithMode(mode))
			if err != nil {
				t.Fatal(err)
			}
			fillRamp(l)

			// All kernels reproduce a linear ramp exactly.
			got := mustRead(t, l, 5.5)
			want := float64(l.Capacity()-1) - 5.5 // 25.5
			if !approxEqual(got, want, 1e-10) {
				t.Fatalf("got %v want %v", got, want)
			}
		})
	}
}

func TestAllModesDCPreservation(t *testing.T) {
	for _, mode := range interp.Modes() {
		l, err := New(32, WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < l.Capacity(); i++ {
			l.Write(42.0)
		}

		if got := mustRead(t, l, 5.3); !approxEqual(got, 42.0, 1e-9) {
			t.Fatalf("%s DC: got %v want 42", mode, got)
		}
	}
}

func TestAllModesSineQuality(t *testing.T) {
	freq := 0.02 // cycles per sample
	size := 256

	modes := []struct {
		mode interp.Mode
		tol  float64
	}{
		{interp.Linear, 0.01},
		{interp.Hermite, 1e-3},
		{interp.Lagrange3, 1e-3},
	}

	for _, tc := range modes {
		l, err := New(size, WithMode(tc.mode))
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; i < size; i++ {
			l.Write(math.Sin(2 * math.Pi * freq * float64(i)))
		}

		offset := 20.37
		// offset 0 is sample index size-1.
		exact := float64(size-1) - offset
		want := math.Sin(2 * math.Pi * freq * exact)
		got := mustRead(t, l, offset)

		if diff := math.Abs(got - want); diff > tc.tol {
			t.Fatalf("%s sine: got %v want %v (err=%e, tol=%e)", tc.mode, got, want, diff, tc.tol)
		}
	}
}

// --- benchmarks ---

func BenchmarkReadLinear(b *testing.B) {
	l, _ := New(1024, WithMode(interp.Linear))
	fillRamp(l)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = l.Read(100.37)
	}
}

func BenchmarkReadHermite(b *testing.B) {
	l, _ := New(1024, WithMode(interp.Hermite))
	fillRamp(l)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = l.Read(100.37)
	}
}

func BenchmarkWrite(b *testing.B) {
	l, _ := New(1024)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		l.Write(float64(i))
	}
}
