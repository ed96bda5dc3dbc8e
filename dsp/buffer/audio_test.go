package buffer

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"

	"github.com/cwbudde/algo-afx/dsp/core"
)

func TestFromAudioBufferFloat(t *testing.T) {
	src := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:   []float64{1, -1, 2, -2, 3, -3},
	}

	b, err := FromAudioBuffer(src)
	if err != nil {
		t.Fatal(err)
	}
	if b.Channels() != 2 || b.Frames() != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", b.Channels(), b.Frames())
	}
	want := [][]float64{{1, 2, 3}, {-1, -2, -3}}
	for ch := range want {
		for i, v := range want[ch] {
			if b.Channel(ch)[i] != v {
				t.Fatalf("Channel(%d)[%d] = %v, want %v", ch, i, b.Channel(ch)[i], v)
			}
		}
	}
}

func TestFromAudioBufferIntScaling(t *testing.T) {
	src := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           []int{16384, -32768, 0},
		SourceBitDepth: 16,
	}

	b, err := FromAudioBuffer(src)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.5, -1, 0}
	for i, v := range want {
		if b.Channel(0)[i] != v {
			t.Fatalf("sample %d = %v, want %v", i, b.Channel(0)[i], v)
		}
	}
}

func TestFromAudioBufferRejectsMissingFormat(t *testing.T) {
	if _, err := FromAudioBuffer(&audio.FloatBuffer{Data: []float64{1}}); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("missing format = %v, want ErrInvalidParameter", err)
	}
	if _, err := FromAudioBuffer(nil); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("nil buffer = %v, want ErrInvalidParameter", err)
	}
}

func TestFloatBufferRoundTripKeepsInterleaving(t *testing.T) {
	b, err := FromChannels([][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatal(err)
	}

	fb := b.ToFloatBuffer(48000)
	if fb.Format.NumChannels != 2 || fb.Format.SampleRate != 48000 {
		t.Fatalf("format = %+v", fb.Format)
	}
	want := []float64{1, 3, 2, 4}
	for i, v := range want {
		if fb.Data[i] != v {
			t.Fatalf("Data = %v, want %v", fb.Data, want)
		}
	}

	b.Channel(1)[0] = 30
	if err := b.WriteFloatBuffer(fb); err != nil {
		t.Fatal(err)
	}
	if fb.Data[1] != 30 {
		t.Fatalf("WriteFloatBuffer did not update in place: %v", fb.Data)
	}

	short := &audio.FloatBuffer{Format: &audio.Format{NumChannels: 2}, Data: make([]float64, 2)}
	if err := b.WriteFloatBuffer(short); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("short destination = %v, want ErrInvalidParameter", err)
	}
}

func TestToIntBufferQuantises(t *testing.T) {
	b, err := FromChannels([][]float64{{0.5, 1, -1, 0.25 / 32768, -2}})
	if err != nil {
		t.Fatal(err)
	}

	ib, err := b.ToIntBuffer(44100, 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ib.SourceBitDepth != 16 || ib.Format.SampleRate != 44100 {
		t.Fatalf("format = %+v depth %d", ib.Format, ib.SourceBitDepth)
	}

	// 1.0 and -2 clip to the integer range.
	want := []int{16384, 32767, -32768, 0, -32768}
	for i, v := range want {
		if ib.Data[i] != v {
			t.Fatalf("Data = %v, want %v", ib.Data, want)
		}
	}

	if _, err := b.ToIntBuffer(44100, 1, nil); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("bit depth 1 = %v, want ErrInvalidParameter", err)
	}
}

func TestToIntBufferDitherStaysWithinTwoLSB(t *testing.T) {
	const n = 4096

	b := NewBlock(2, n)
	for ch := range 2 {
		for i := range n {
			b.Channel(ch)[i] = 0.3 * math.Sin(float64(i+ch)*0.01)
		}
	}

	ib, err := b.ToIntBuffer(48000, 16, vecmath.NewDitherState(1))
	if err != nil {
		t.Fatal(err)
	}
	back, err := FromAudioBuffer(ib)
	if err != nil {
		t.Fatal(err)
	}

	lsb := 1.0 / 32768
	changed := 0
	for ch := range 2 {
		for i, v := range back.Channel(ch) {
			diff := math.Abs(v - b.Channel(ch)[i])
			if diff > 1.5*lsb+1e-12 {
				t.Fatalf("sample %d/%d off by %v LSB", ch, i, diff/lsb)
			}
			if math.Round(b.Channel(ch)[i]*32768) != v*32768 {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Fatal("dither never changed a rounding decision")
	}

	again, err := b.ToIntBuffer(48000, 16, vecmath.NewDitherState(1))
	if err != nil {
		t.Fatal(err)
	}
	for i := range ib.Data {
		if ib.Data[i] != again.Data[i] {
			t.Fatal("same seed produced different dither")
		}
	}
}
