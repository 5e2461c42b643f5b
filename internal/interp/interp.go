// Package interp builds the six thermocouple interpolation schemes of
// §4.7 (Horizontal, Vertical, Bilinear, each with an extrapolating
// variant) from a synchronized DAQ window and projects them onto the
// video region of interest, frame by frame.
package interp

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/daqsrc"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// Interpolator holds the fitted per-thermocouple-group temperature
// traces and projects them onto any video frame or pixel on demand.
// data's row count depends on the method: calW for Horizontal*, calH
// for Vertical*, calH*calW for Bilinear*; its column count is always
// calNum (one column per synchronized frame).
type Interpolator struct {
	method     setting.InterpMethod
	calH, calW int
	data       *mat.Dense
}

// Build reads the [startRow, startRow+calNum) window of daq, samples
// each thermocouple's column, and fits the requested interpolation
// scheme over area (§4.7). It works on a sorted copy of thermocouples:
// by x for Horizontal*, by y for Vertical*, and row-major by (y, x)
// for Bilinear*, the grid order interp2 reads.
func Build(method setting.InterpMethod, area setting.Area, thermocouples []setting.Thermocouple, daq *daqsrc.Table, startRow, calNum int) (*Interpolator, error) {
	thermocouples = append([]setting.Thermocouple(nil), thermocouples...)
	sort.SliceStable(thermocouples, func(i, j int) bool {
		a, b := thermocouples[i], thermocouples[j]
		switch method.Kind {
		case setting.InterpHorizontal, setting.InterpHorizontalExtrapolate:
			return a.PosX < b.PosX
		case setting.InterpVertical, setting.InterpVerticalExtrapolate:
			return a.PosY < b.PosY
		}
		return a.PosY < b.PosY || (a.PosY == b.PosY && a.PosX < b.PosX)
	})
	temp2 := make([][]float64, len(thermocouples))
	for i, tc := range thermocouples {
		if tc.ColumnIndex < 0 || tc.ColumnIndex >= daq.NCols {
			return nil, &tlcerrors.InvalidArgumentError{Field: "thermocouples", Reason: "column index out of range"}
		}
		temp2[i] = make([]float64, calNum)
	}
	if startRow+calNum > daq.NRows {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "daq window exceeds loaded rows"}
	}
	for f := 0; f < calNum; f++ {
		row := daq.Row(startRow + f)
		for i, tc := range thermocouples {
			temp2[i][f] = row[tc.ColumnIndex]
		}
	}

	var data *mat.Dense
	switch method.Kind {
	case setting.InterpBilinear, setting.InterpBilinearExtrapolate:
		data = interp2(temp2, method, area, thermocouples)
	default:
		data = interp1(temp2, method, area, thermocouples)
	}

	return &Interpolator{
		method: method,
		calH:   int(area.Height),
		calW:   int(area.Width),
		data:   data,
	}, nil
}

// bracket finds the pair of adjacent grid indices (li, ri = li+1)
// whose positions straddle pos, clamping ri to the last index so
// querying beyond the last thermocouple extrapolates from the final
// segment instead of indexing out of range.
func bracket(tcPos []int32, pos int32) (int, int) {
	li, ri := 0, 1
	for ri < len(tcPos)-1 && pos >= tcPos[ri] {
		li++
		ri++
	}
	return li, ri
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func interp1(temp2 [][]float64, method setting.InterpMethod, area setting.Area, thermocouples []setting.Thermocouple) *mat.Dense {
	var interpLen int
	tcPos := make([]int32, len(thermocouples))
	horizontal := method.Kind == setting.InterpHorizontal || method.Kind == setting.InterpHorizontalExtrapolate
	if horizontal {
		interpLen = int(area.Width)
		for i, tc := range thermocouples {
			tcPos[i] = tc.PosX - int32(area.Left)
		}
	} else {
		interpLen = int(area.Height)
		for i, tc := range thermocouples {
			tcPos[i] = tc.PosY - int32(area.Top)
		}
	}
	doExtra := method.Kind == setting.InterpHorizontalExtrapolate || method.Kind == setting.InterpVerticalExtrapolate

	calNum := len(temp2[0])
	data := mat.NewDense(interpLen, calNum, nil)
	for pos := 0; pos < interpLen; pos++ {
		p32 := int32(pos)
		li, ri := bracket(tcPos, p32)
		l, r := tcPos[li], tcPos[ri]
		q := p32
		if !doExtra {
			q = clamp32(q, l, r)
		}
		lTemps, rTemps := temp2[li], temp2[ri]
		span := float64(r - l)
		for f := 0; f < calNum; f++ {
			v := (lTemps[f]*float64(r-q) + rTemps[f]*float64(q-l)) / span
			data.Set(pos, f, v)
		}
	}
	return data
}

func interp2(temp2 [][]float64, method setting.InterpMethod, area setting.Area, thermocouples []setting.Thermocouple) *mat.Dense {
	tcH, tcW := method.TCRows, method.TCCols
	doExtra := method.Kind == setting.InterpBilinearExtrapolate

	tcX := make([]int32, tcW)
	for i := 0; i < tcW; i++ {
		tcX[i] = thermocouples[i].PosX - int32(area.Left)
	}
	tcY := make([]int32, tcH)
	for i := 0; i < tcH; i++ {
		tcY[i] = thermocouples[i*tcW].PosY - int32(area.Top)
	}

	calNum := len(temp2[0])
	calH, calW := int(area.Height), int(area.Width)
	pixNum := calH * calW
	data := mat.NewDense(pixNum, calNum, nil)

	for pos := 0; pos < pixNum; pos++ {
		x := int32(pos % calW)
		y := int32(pos / calW)
		yi0, yi1 := bracket(tcY, y)
		xi0, xi1 := bracket(tcX, x)
		x0, x1, y0, y1 := tcX[xi0], tcX[xi1], tcY[yi0], tcY[yi1]

		t00 := temp2[tcW*yi0+xi0]
		t01 := temp2[tcW*yi0+xi1]
		t10 := temp2[tcW*yi1+xi0]
		t11 := temp2[tcW*yi1+xi1]

		qx, qy := x, y
		if !doExtra {
			qx = clamp32(qx, x0, x1)
			qy = clamp32(qy, y0, y1)
		}
		areaDenom := float64(x1-x0) * float64(y1-y0)

		for f := 0; f < calNum; f++ {
			v := (t00[f]*float64(x1-qx)*float64(y1-qy) +
				t01[f]*float64(qx-x0)*float64(y1-qy) +
				t10[f]*float64(x1-qx)*float64(qy-y0) +
				t11[f]*float64(qx-x0)*float64(qy-y0)) / areaDenom
			data.Set(pos, f, v)
		}
	}
	return data
}

// Frame projects frameIndex onto a calH x calW grid (§4.7).
func (it *Interpolator) Frame(frameIndex int) (*mat.Dense, error) {
	rows, cols := it.data.Dims()
	if frameIndex < 0 || frameIndex >= cols {
		return nil, &tlcerrors.InvalidArgumentError{Field: "frame_index", Reason: "out of range"}
	}
	column := make([]float64, rows)
	mat.Col(column, frameIndex, it.data)

	out := mat.NewDense(it.calH, it.calW, nil)
	switch it.method.Kind {
	case setting.InterpHorizontal, setting.InterpHorizontalExtrapolate:
		for y := 0; y < it.calH; y++ {
			for x := 0; x < it.calW; x++ {
				out.Set(y, x, column[x])
			}
		}
	case setting.InterpVertical, setting.InterpVerticalExtrapolate:
		for y := 0; y < it.calH; y++ {
			for x := 0; x < it.calW; x++ {
				out.Set(y, x, column[y])
			}
		}
	default:
		for y := 0; y < it.calH; y++ {
			for x := 0; x < it.calW; x++ {
				out.Set(y, x, column[y*it.calW+x])
			}
		}
	}
	return out, nil
}

// Point returns the full frame-indexed trace for one pixel,
// point_index = y*calW + x (§4.7).
func (it *Interpolator) Point(pointIndex int) []float64 {
	var rowIndex int
	switch it.method.Kind {
	case setting.InterpHorizontal, setting.InterpHorizontalExtrapolate:
		rowIndex = pointIndex % it.calW
	case setting.InterpVertical, setting.InterpVerticalExtrapolate:
		rowIndex = pointIndex / it.calW
	default:
		rowIndex = pointIndex
	}
	_, cols := it.data.Dims()
	out := make([]float64, cols)
	mat.Row(out, rowIndex, it.data)
	return out
}

// Shape returns (calH, calW).
func (it *Interpolator) Shape() (int, int) {
	return it.calH, it.calW
}
