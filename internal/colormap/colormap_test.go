package colormap

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesDecodablePNG(t *testing.T) {
	nu2 := []float64{0, 1, 2, 3}
	buf, err := Render(nu2, 2, 2, 0, 3)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(buf))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 2, bounds.Dx())
	assert.Equal(t, 2, bounds.Dy())
}

func TestRenderNaNPixelIsWhite(t *testing.T) {
	nu2 := []float64{math.NaN(), 1, 2, 3}
	buf, err := Render(nu2, 2, 2, 0, 3)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(buf))
	require.NoError(t, err)
	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestRenderClampsOutOfRangeValues(t *testing.T) {
	nu2 := []float64{-100, 100}
	bufClamped, err := Render(nu2, 1, 2, 0, 10)
	require.NoError(t, err)

	nu2Extreme := []float64{0, 10}
	bufExtreme, err := Render(nu2Extreme, 1, 2, 0, 10)
	require.NoError(t, err)

	assert.Equal(t, bufExtreme, bufClamped)
}

func TestRenderRejectsMismatchedLength(t *testing.T) {
	_, err := Render([]float64{1, 2, 3}, 2, 2, 0, 1)
	require.Error(t, err)
}

func TestRenderRejectsDegenerateRange(t *testing.T) {
	_, err := Render([]float64{1}, 1, 1, 5, 5)
	require.Error(t, err)
}

func TestColorAtEndpointsMatchStops(t *testing.T) {
	c0 := colorAt(0)
	assert.Equal(t, stops[0].r, c0.R)
	assert.Equal(t, stops[0].g, c0.G)
	assert.Equal(t, stops[0].b, c0.B)

	c1 := colorAt(1)
	last := stops[len(stops)-1]
	assert.Equal(t, last.r, c1.R)
	assert.Equal(t, last.g, c1.G)
	assert.Equal(t, last.b, c1.B)
}

func TestColorAtMidpointMatchesStop(t *testing.T) {
	c := colorAt(0.5)
	assert.Equal(t, stops[4].r, c.R)
	assert.Equal(t, stops[4].g, c.G)
	assert.Equal(t, stops[4].b, c.B)
}
