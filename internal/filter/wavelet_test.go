package filter

import (
	"math"
	"testing"
)

func TestWaveletLevelsShortSignalIsZero(t *testing.T) {
	if got := waveletLevels(4); got != 0 {
		t.Fatalf("expected 0 levels for a short signal, got %d", got)
	}
}

func TestWaveletSoftThresholdIdentityAtZeroLevels(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	out := waveletSoftThreshold(data, 0.5)
	if len(out) != len(data) {
		t.Fatalf("expected unchanged length, got %d", len(out))
	}
	for i := range data {
		if math.Abs(out[i]-data[i]) > 1e-9 {
			t.Fatalf("index %d: got %v want %v", i, out[i], data[i])
		}
	}
}

func TestTransformRoundTrip(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	orig := append([]float64{}, buf...)

	transformOneLevel(buf, db8Lo, db8Hi)
	inverseOneLevel(buf, db8Lo, db8Hi)

	for i := range orig {
		if math.Abs(buf[i]-orig[i]) > 1e-6 {
			t.Fatalf("index %d: got %v want %v", i, buf[i], orig[i])
		}
	}
}

func TestClampByte(t *testing.T) {
	cases := []struct {
		in   float64
		want byte
	}{
		{-10, 0},
		{0, 0},
		{128.7, 128},
		{255, 255},
		{300, 255},
	}
	for _, c := range cases {
		if got := clampByte(c.in); got != c.want {
			t.Fatalf("clampByte(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
