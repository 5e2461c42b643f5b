package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/setting"
)

func TestApplyNoneIsIdentity(t *testing.T) {
	green2 := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	out, err := Apply(context.Background(), green2, setting.FilterMethod{Kind: setting.FilterNone}, 1, nil)
	require.NoError(t, err)
	assert.True(t, mat.Equal(green2, out))
}

// TestApplyMedianSmoothsSpike mirrors the canonical median scenario:
// a single isolated spike in an otherwise-zero trace is smoothed away
// by a window-5 running median.
func TestApplyMedianSmoothsSpike(t *testing.T) {
	trace := []float64{0, 0, 100, 0, 0}
	green2 := mat.NewDense(5, 1, trace)

	out, err := Apply(context.Background(), green2, setting.FilterMethod{Kind: setting.FilterMedian, Window: 5}, 1, nil)
	require.NoError(t, err)

	for f := 0; f < 5; f++ {
		assert.Equal(t, 0.0, out.At(f, 0), "frame %d", f)
	}
}

func TestApplyMedianClampsToAvailableWindow(t *testing.T) {
	trace := []float64{10, 20, 30}
	green2 := mat.NewDense(3, 1, trace)

	out, err := Apply(context.Background(), green2, setting.FilterMethod{Kind: setting.FilterMedian, Window: 100}, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 10.0, out.At(0, 0))
}

func TestApplyWaveletZeroThresholdRoundTrips(t *testing.T) {
	trace := make([]float64, 64)
	for i := range trace {
		trace[i] = float64(50 + i%7)
	}
	green2 := mat.NewDense(64, 1, trace)

	out, err := Apply(context.Background(), green2, setting.FilterMethod{Kind: setting.FilterWavelet, ThresholdRatio: 0}, 1, nil)
	require.NoError(t, err)

	for f := 0; f < 64; f++ {
		assert.InDelta(t, trace[f], out.At(f, 0), 1.0, "frame %d", f)
	}
}

func TestApplyWaveletSuppressesDetail(t *testing.T) {
	trace := make([]float64, 64)
	for i := range trace {
		trace[i] = 100
	}
	trace[10] = 200

	green2 := mat.NewDense(64, 1, trace)
	out, err := Apply(context.Background(), green2, setting.FilterMethod{Kind: setting.FilterWavelet, ThresholdRatio: 1}, 1, nil)
	require.NoError(t, err)

	assert.InDelta(t, 100, out.At(5, 0), 25.0)
}

func TestFilterPointOutOfRange(t *testing.T) {
	green2 := mat.NewDense(2, 4, nil)
	area := setting.Area{Height: 2, Width: 2}

	_, err := FilterPoint(green2, setting.FilterMethod{Kind: setting.FilterNone}, 5, 0, area)
	require.Error(t, err)
}

func TestFilterPointMatchesColumn(t *testing.T) {
	green2 := mat.NewDense(2, 4, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	area := setting.Area{Height: 2, Width: 2}

	out, err := FilterPoint(green2, setting.FilterMethod{Kind: setting.FilterNone}, 1, 1, area)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 8}, out)
}
