package solve

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlc-project/tlc-core/internal/setting"
)

// fakeSource hands out the same trace for every pixel, enough to
// drive the solver without building a full Interpolator.
type fakeSource struct {
	trace []float64
	calH  int
	calW  int
}

func (f fakeSource) Point(int) []float64 { return f.trace }
func (f fakeSource) Shape() (int, int)   { return f.calH, f.calW }

// handCraftedPixel builds a temperature trace that is flat except for
// a single jump whose size is chosen so the governing equation's
// residual is exactly zero at h=hStar: every term but one has a
// zero delta_temp, and the one nonzero term's coefficient is solved
// for algebraically (§4.8 S4 "hand-crafted pixel" scenario).
func handCraftedPixel(hStar, k, a, dt, tw float64, gmax int) []float64 {
	const t0 = 20.0
	at3 := a * dt * float64(gmax-3-1)
	expErfc := math.Exp(hStar*hStar/(k*k)*at3) * math.Erfc(hStar/k*math.Sqrt(at3))
	c3 := 1 - expErfc
	jump := (tw - t0) / c3

	temps := make([]float64, gmax+1)
	for i := range temps {
		if i < 4 {
			temps[i] = t0
		} else {
			temps[i] = t0 + jump
		}
	}
	return temps
}

func TestNewtonTangentConvergence(t *testing.T) {
	const (
		hStar = 500.0
		k     = 0.2
		a     = 1e-6
		dt    = 0.01
		tw    = 80.0
		gmax  = 10
	)
	trace := handCraftedPixel(hStar, k, a, dt, tw, gmax)

	physical := setting.PhysicalParam{
		PeakTemperature:          tw,
		SolidThermalConductivity: k,
		SolidThermalDiffusivity:  a,
		CharacteristicLength:     1,
		AirThermalConductivity:   1,
	}
	method := setting.IterationMethod{Kind: setting.IterNewtonTangent, H0: 50, MaxIterNum: 20}
	src := fakeSource{trace: trace, calH: 1, calW: 1}

	res, err := Solve(context.Background(), []uint32{uint32(gmax)}, src, physical, method, int(1/dt), 6, 1e-4, 1, nil)
	require.NoError(t, err)
	require.Len(t, res.Nu2, 1)
	assert.InDelta(t, hStar, res.Nu2[0], 0.05)
}

func TestNewtonDownConvergesOnSamePixel(t *testing.T) {
	const (
		hStar = 500.0
		k     = 0.2
		a     = 1e-6
		dt    = 0.01
		tw    = 80.0
		gmax  = 10
	)
	trace := handCraftedPixel(hStar, k, a, dt, tw, gmax)

	physical := setting.PhysicalParam{
		PeakTemperature:          tw,
		SolidThermalConductivity: k,
		SolidThermalDiffusivity:  a,
		CharacteristicLength:     1,
		AirThermalConductivity:   1,
	}
	method := setting.IterationMethod{Kind: setting.IterNewtonDown, H0: 50, MaxIterNum: 20}
	src := fakeSource{trace: trace, calH: 1, calW: 1}

	res, err := Solve(context.Background(), []uint32{uint32(gmax)}, src, physical, method, int(1/dt), 6, 1e-4, 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, hStar, res.Nu2[0], 0.05)
}

func TestSolveBelowMinimumGmaxFrameIndexIsNaN(t *testing.T) {
	physical := setting.PhysicalParam{PeakTemperature: 80, SolidThermalConductivity: 1, SolidThermalDiffusivity: 1e-6, CharacteristicLength: 1, AirThermalConductivity: 1}
	method := setting.IterationMethod{Kind: setting.IterNewtonTangent, H0: 50, MaxIterNum: 20}
	src := fakeSource{trace: []float64{1, 2, 3, 4, 5}, calH: 1, calW: 1}

	res, err := Solve(context.Background(), []uint32{4}, src, physical, method, 10, 6, 1e-4, 1, nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.Nu2[0]))
}

func TestNuMeanExcludesNaN(t *testing.T) {
	got := nanMean([]float64{1, math.NaN(), 3})
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestNuMeanAllNaN(t *testing.T) {
	got := nanMean([]float64{math.NaN(), math.NaN()})
	assert.True(t, math.IsNaN(got))
}
