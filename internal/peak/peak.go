// Package peak implements §4.6 peak detection: for each pixel column
// of a filtered Green2 matrix, the frame index of its maximum value.
package peak

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Detect returns a dense length-npixels array of frame indices, one
// per pixel column of filtered, each the index of that column's
// maximum value. Ties break to the smallest index (§4.6), matching
// floats.MaxIdx's first-occurrence semantics.
func Detect(ctx context.Context, filtered *mat.Dense, chunkSize int) ([]uint32, error) {
	if chunkSize < 1 {
		chunkSize = 1
	}
	rows, cols := filtered.Dims()
	out := make([]uint32, cols)

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
				mat.Col(column, p, filtered)
				out[p] = uint32(floats.MaxIdx(column))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DetectColumn is the single-pixel form, used by get_green_history
// callers that already hold a filtered trace.
func DetectColumn(column []float64) uint32 {
	return uint32(floats.MaxIdx(column))
}
