// Package solve computes the per-pixel Nusselt-number field of §4.8:
// a semi-infinite-solid heat-transfer equation is solved for the
// convective coefficient h by Newton iteration, then rescaled to Nu.
package solve

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/tlc-project/tlc-core/internal/progress"
	"github.com/tlc-project/tlc-core/internal/setting"
)

// PointSource supplies one pixel's full temperature trace and the
// calibrated grid shape; *interp.Interpolator satisfies it.
type PointSource interface {
	Point(pointIndex int) []float64
	Shape() (int, int)
}

// firstFewToCalT0 is the number of leading samples averaged into the
// initial wall temperature; a pixel whose gmax frame index does not
// exceed it is not solved and gets NaN (§4.8 edge case).
const firstFewToCalT0 = 4

// Result is the Nu2 field plus its NaN-excluding mean (§4.8 NuMean).
type Result struct {
	Nu2     []float64 // row-major, len == calH*calW
	NuMean  float64
	CalH    int
	CalW    int
}

// Solve computes Nu for every pixel named by gmaxFrameIndexes (one
// peak-detected frame index per pixel, §4.6) against the temperature
// traces in interpolator, at frameRate frames/sec. mon may be nil, in
// which case progress is simply not reported.
func Solve(ctx context.Context, gmaxFrameIndexes []uint32, interpolator PointSource, physical setting.PhysicalParam, method setting.IterationMethod, frameRate int, maxHalvings int, tolerance float64, chunkSize int, mon *progress.Monitor) (*Result, error) {
	if chunkSize < 1 {
		chunkSize = 1
	}
	calH, calW := interpolator.Shape()
	dt := 1.0 / float64(frameRate)

	if mon != nil {
		if err := mon.Start(uint32(len(gmaxFrameIndexes))); err != nil {
			return nil, err
		}
	}

	equation := func(gmaxFrameIndex int, temperatures []float64, h float64) (float64, float64) {
		return heatTransferEquation(gmaxFrameIndex, temperatures, h, dt, physical.SolidThermalConductivity, physical.SolidThermalDiffusivity, physical.PeakTemperature)
	}

	var solveSinglePoint func(gmaxFrameIndex int, temperatures []float64) float64
	switch method.Kind {
	case setting.IterNewtonTangent:
		solveSinglePoint = newtonTangent(equation, method.H0, method.MaxIterNum, tolerance)
	case setting.IterNewtonDown:
		solveSinglePoint = newtonDown(equation, method.H0, method.MaxIterNum, maxHalvings, tolerance)
	default:
		solveSinglePoint = newtonTangent(equation, method.H0, method.MaxIterNum, tolerance)
	}

	nu1 := make([]float64, len(gmaxFrameIndexes))
	g, gctx := errgroup.WithContext(ctx)
	for chunkStart := 0; chunkStart < len(gmaxFrameIndexes); chunkStart += chunkSize {
		chunkStart := chunkStart
		chunkEnd := chunkStart + chunkSize
		if chunkEnd > len(gmaxFrameIndexes) {
			chunkEnd = len(gmaxFrameIndexes)
		}
		g.Go(func() error {
			for pointIndex := chunkStart; pointIndex < chunkEnd; pointIndex++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				gmaxFrameIndex := int(gmaxFrameIndexes[pointIndex])
				if gmaxFrameIndex <= firstFewToCalT0 {
					nu1[pointIndex] = math.NaN()
					continue
				}
				temperatures := interpolator.Point(pointIndex)
				h := solveSinglePoint(gmaxFrameIndex, temperatures)
				nu1[pointIndex] = h * physical.CharacteristicLength / physical.AirThermalConductivity
				if mon != nil {
					if err := mon.Add(1); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{Nu2: nu1, NuMean: nanMean(nu1), CalH: calH, CalW: calW}, nil
}

// heatTransferEquation evaluates the semi-infinite-solid lumped model
// and its derivative with respect to h at one pixel (§4.8).
func heatTransferEquation(gmaxFrameIndex int, temps []float64, h, dt, k, a, tw float64) (float64, float64) {
	t0 := 0.0
	for _, v := range temps[:firstFewToCalT0] {
		t0 += v
	}
	t0 /= firstFewToCalT0

	var sum, diffSum float64
	for frameIndex := 0; frameIndex < gmaxFrameIndex; frameIndex++ {
		deltaTemp := temps[frameIndex+1] - temps[frameIndex]
		at := a * dt * float64(gmaxFrameIndex-frameIndex-1)
		sqrtAt := math.Sqrt(at)
		expErfc := math.Exp(h*h/(k*k)*at) * math.Erfc(h/k*sqrtAt)
		step := (1 - expErfc) * deltaTemp
		dStep := -deltaTemp * (2*sqrtAt/k/math.Sqrt(math.Pi) - (2*at*h*expErfc)/(k*k))
		sum += step
		diffSum += dStep
	}
	return tw - t0 - sum, diffSum
}

// equationFunc is the heat-transfer residual and its h-derivative.
type equationFunc func(gmaxFrameIndex int, temperatures []float64, h float64) (float64, float64)

// newtonTangent is the plain Newton-Raphson solver (§4.8).
func newtonTangent(equation equationFunc, h0 float64, maxIterNum int, tolerance float64) func(int, []float64) float64 {
	return func(gmaxFrameIndex int, temperatures []float64) float64 {
		h := h0
		for i := 0; i < maxIterNum; i++ {
			f, df := equation(gmaxFrameIndex, temperatures, h)
			nextH := h - f/df
			if math.Abs(nextH) > 10000 {
				return math.NaN()
			}
			if math.Abs(nextH-h) < tolerance*math.Abs(h) {
				return nextH
			}
			h = nextH
		}
		return h
	}
}

// newtonDown is damped Newton-Raphson: each step only accepts a move
// that shrinks the residual, halving the step length up to
// maxHalvings times before giving up on that iteration (§4.8).
func newtonDown(equation equationFunc, h0 float64, maxIterNum, maxHalvings int, tolerance float64) func(int, []float64) float64 {
	return func(gmaxFrameIndex int, temperatures []float64) float64 {
		h := h0
		f, df := equation(gmaxFrameIndex, temperatures, h)
		for i := 0; i < maxIterNum; i++ {
			lambda := 1.0
			accepted := false
			for halving := 0; halving <= maxHalvings; halving++ {
				nextH := h - lambda*f/df
				if math.Abs(nextH-h) < tolerance*math.Abs(h) {
					return nextH
				}
				nextF, nextDf := equation(gmaxFrameIndex, temperatures, nextH)
				if math.Abs(nextF) < math.Abs(f) {
					h, f, df = nextH, nextF, nextDf
					accepted = true
					break
				}
				lambda /= 2
			}
			if !accepted {
				return math.NaN()
			}
			if math.Abs(h) > 10000 {
				return math.NaN()
			}
		}
		return h
	}
}

// nanMean averages the non-NaN entries of data (§4.8 NuMean),
// matching the original's is_nan-excluding fold.
func nanMean(data []float64) float64 {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	return stat.Mean(finite, nil)
}
