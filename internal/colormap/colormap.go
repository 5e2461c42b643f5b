// Package colormap renders the Nu2 field as a palette-mapped PNG
// (§4.9): finite values are linearly mapped into [vmin, vmax] and
// looked up in a fixed 9-stop rainbow gradient; NaN pixels render
// white, mirroring the original's failed-pixel convention.
package colormap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// stop is one control point of the gradient, t in [0, 1].
type stop struct {
	t       float64
	r, g, b uint8
}

// stops is a 9-point distillation of the original's 256-entry jet
// table, sampled at indexes 0,32,64,96,128,160,192,224,255 and
// rounded to bytes: dark blue through cyan, green, yellow, orange,
// to dark red.
var stops = []stop{
	{0.000, 0, 0, 131},
	{0.125, 0, 4, 255},
	{0.250, 0, 131, 255},
	{0.375, 4, 255, 251},
	{0.500, 135, 255, 120},
	{0.625, 255, 251, 0},
	{0.750, 255, 124, 0},
	{0.875, 251, 0, 0},
	{1.000, 128, 0, 0},
}

// colorAt linearly interpolates the gradient at t, clamped to [0, 1].
func colorAt(t float64) color.RGBA {
	if t <= 0 {
		s := stops[0]
		return color.RGBA{s.r, s.g, s.b, 255}
	}
	if t >= 1 {
		s := stops[len(stops)-1]
		return color.RGBA{s.r, s.g, s.b, 255}
	}
	for i := 1; i < len(stops); i++ {
		if t > stops[i].t {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		span := hi.t - lo.t
		frac := (t - lo.t) / span
		return color.RGBA{
			R: lerpByte(lo.r, hi.r, frac),
			G: lerpByte(lo.g, hi.g, frac),
			B: lerpByte(lo.b, hi.b, frac),
			A: 255,
		}
	}
	s := stops[len(stops)-1]
	return color.RGBA{s.r, s.g, s.b, 255}
}

func lerpByte(lo, hi uint8, frac float64) uint8 {
	v := float64(lo) + (float64(hi)-float64(lo))*frac
	return clampByte(v)
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Render maps nu2 (row-major, height*width, NaN at failed pixels)
// through the gradient after clamping every finite value to
// [vmin, vmax], and returns the encoded PNG bytes (§4.9).
func Render(nu2 []float64, height, width int, vmin, vmax float64) ([]byte, error) {
	if len(nu2) != height*width {
		return nil, &tlcerrors.InvalidArgumentError{Field: "nu2", Reason: "length does not match height*width"}
	}
	if vmax <= vmin {
		return nil, &tlcerrors.InvalidArgumentError{Field: "vmax", Reason: "must be greater than vmin"}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	span := vmax - vmin
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := nu2[y*width+x]
			if math.IsNaN(v) {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
				continue
			}
			if v < vmin {
				v = vmin
			} else if v > vmax {
				v = vmax
			}
			img.Set(x, y, colorAt((v-vmin)/span))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
