package peak

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDetectPerColumnArgmax(t *testing.T) {
	// column 0: frames [1,5,3] -> peak at frame 1
	// column 1: frames [9,9,0] -> tie between 0 and 1, smallest index wins
	filtered := mat.NewDense(3, 2, []float64{
		1, 9,
		5, 9,
		3, 0,
	})

	out, err := Detect(context.Background(), filtered, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 0}, out)
}

func TestDetectColumnSingle(t *testing.T) {
	assert.Equal(t, uint32(2), DetectColumn([]float64{0, 1, 5, 5}))
}
