// Package filter applies the per-pixel temporal transform of §4.5 to
// a Green2 matrix: identity, running median, or Daubechies-8 wavelet
// soft-thresholding. Pixels (columns) are independent, so the matrix
// form fans work out across worker goroutines; FilterPoint exposes
// the single-column path used by get_green_history without forcing a
// full-matrix filter first.
package filter

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/progress"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// Apply filters every column of green2 independently according to
// method, returning a dense matrix of the same shape. Wavelet output
// may legitimately differ in magnitude from the u8 Green range but is
// clamped back into it for downstream peak detection (§4.6). mon may
// be nil, in which case progress is simply not reported.
func Apply(ctx context.Context, green2 *mat.Dense, method setting.FilterMethod, chunkSize int, mon *progress.Monitor) (*mat.Dense, error) {
	if chunkSize < 1 {
		chunkSize = 1
	}
	rows, cols := green2.Dims()
	out := mat.NewDense(rows, cols, nil)

	if mon != nil {
		if err := mon.Start(uint32(cols)); err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for chunkStart := 0; chunkStart < cols; chunkStart += chunkSize {
		chunkStart := chunkStart
		chunkEnd := chunkStart + chunkSize
		if chunkEnd > cols {
			chunkEnd = cols
		}
		g.Go(func() error {
			column := make([]float64, rows)
			for p := chunkStart; p < chunkEnd; p++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				mat.Col(column, p, green2)
				filtered, err := filterColumn(column, method)
				if err != nil {
					return err
				}
				for f, v := range filtered {
					out.Set(f, p, v)
				}
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
	return out, nil
}

// FilterPoint filters a single pixel's time series, used by
// get_green_history (§12 item 2) to plot a thermocouple-adjacent
// pixel's trace without filtering the whole matrix first.
func FilterPoint(green2 *mat.Dense, method setting.FilterMethod, y, x int, area setting.Area) ([]float64, error) {
	h, w := int(area.Height), int(area.Width)
	if y < 0 || y >= h {
		return nil, &tlcerrors.InvalidArgumentError{Field: "y", Reason: "out of range"}
	}
	if x < 0 || x >= w {
		return nil, &tlcerrors.InvalidArgumentError{Field: "x", Reason: "out of range"}
	}
	position := y*w + x
	rows, _ := green2.Dims()
	column := make([]float64, rows)
	mat.Col(column, position, green2)
	return filterColumn(column, method)
}

func filterColumn(column []float64, method setting.FilterMethod) ([]float64, error) {
	switch method.Kind {
	case setting.FilterNone:
		out := make([]float64, len(column))
		copy(out, column)
		return out, nil
	case setting.FilterMedian:
		return filterMedian(column, method.Window), nil
	case setting.FilterWavelet:
		return filterWavelet(column, method.ThresholdRatio), nil
	default:
		return nil, &tlcerrors.InvalidArgumentError{Field: "filter_method", Reason: "unknown kind"}
	}
}

func filterMedian(column []float64, window int) []float64 {
	sm := newSlidingMedian(window)
	out := make([]float64, len(column))
	for i, v := range column {
		out[i] = float64(sm.consume(int(clampByte(v))))
	}
	return out
}

func filterWavelet(column []float64, thresholdRatio float64) []float64 {
	filtered := waveletSoftThreshold(column, thresholdRatio)
	out := make([]float64, len(filtered))
	for i, v := range filtered {
		out[i] = float64(clampByte(v))
	}
	return out
}
