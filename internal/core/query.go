package core

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/colormap"
	"github.com/tlc-project/tlc-core/internal/filter"
	"github.com/tlc-project/tlc-core/internal/progress"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// Read queries (§4.1) never mutate Setting; most answer from a few
// memory reads on the loop thread, and return *tlcerrors.PreconditionUnsatisfiedError
// ("NotReady") when the underlying Data slot is absent or stale. A
// slot goes stale the instant Setting changes out from under it
// (§3's Testable Property 7): nothing clears the old slot in place,
// so every handler below recomputes the stage's live fingerprint from
// gs.Setting — the same helpers eval.go already uses — and treats a
// mismatch exactly like a nil slot, rather than trusting non-nil
// alone. get_frame is the one exception to "answer from the loop
// thread directly": a decoder-pool miss can block on a worker, so its
// handler hands the wait off to its own goroutine instead (§4.3, §5
// "the reconcile thread... never... blocks on a worker").

// freshVideo returns gs.Data.Video only if it was built from the
// Setting currently in force.
func (gs *GlobalState) freshVideo() (*VideoData, error) {
	fp := gs.Setting.VideoMetaFingerprint()
	if gs.Data.Video == nil || gs.Data.Video.Fingerprint != fp {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "video not loaded yet"}
	}
	return gs.Data.Video, nil
}

// freshDaq returns gs.Data.Daq only if it was built from the Setting
// currently in force.
func (gs *GlobalState) freshDaq() (*DaqData, error) {
	fp := gs.Setting.DaqMetaFingerprint()
	if gs.Data.Daq == nil || gs.Data.Daq.Fingerprint != fp {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "daq not loaded yet"}
	}
	return gs.Data.Daq, nil
}

// freshGreen2 returns gs.Data.Green2 only if it was built from the
// Setting currently in force.
func (gs *GlobalState) freshGreen2() (*Green2Data, error) {
	fp, ok := gs.Setting.Green2Fingerprint()
	if !ok || gs.Data.Green2 == nil || gs.Data.Green2.Fingerprint != fp {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "green2 not built yet"}
	}
	return gs.Data.Green2, nil
}

// freshInterp returns gs.Data.Interp only if it was built from the
// Setting currently in force.
func (gs *GlobalState) freshInterp() (*InterpolateData, error) {
	fp, ok := gs.Setting.InterpolateFingerprint()
	if !ok || gs.Data.Interp == nil || gs.Data.Interp.Fingerprint != fp {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "not interp yet"}
	}
	return gs.Data.Interp, nil
}

// freshSolve returns gs.Data.Solve only if it was built from the
// Setting currently in force.
func (gs *GlobalState) freshSolve() (*SolveData, error) {
	fp, ok := gs.Setting.SolveFingerprint()
	if !ok || gs.Data.Solve == nil || gs.Data.Solve.Fingerprint != fp {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "solve not run yet"}
	}
	return gs.Data.Solve, nil
}

type FrameResult struct {
	JPEG []byte
	Err  error
}

// GetFrameRequest decodes frame FrameIndex as a JPEG thumbnail,
// independent of Green2 (§4.3 "Frames as queries").
type GetFrameRequest struct {
	FrameIndex int
	Reply      chan<- FrameResult
}

func (r GetFrameRequest) handle(gs *GlobalState) {
	video, err := gs.freshVideo()
	if err != nil {
		r.Reply <- FrameResult{Err: err}
		return
	}
	pool := video.Pool
	go func() {
		jpegBytes, err := pool.GetFrame(context.Background(), r.FrameIndex)
		r.Reply <- FrameResult{JPEG: jpegBytes, Err: err}
	}()
}

type DaqRowResult struct {
	Row []float64
	Err error
}

// GetDaqRowRequest returns one raw DAQ row, independent of synchronization.
type GetDaqRowRequest struct {
	RowIndex int
	Reply    chan<- DaqRowResult
}

func (r GetDaqRowRequest) handle(gs *GlobalState) {
	daq, err := gs.freshDaq()
	if err != nil {
		r.Reply <- DaqRowResult{Err: err}
		return
	}
	if r.RowIndex < 0 || r.RowIndex >= daq.Table.NRows {
		r.Reply <- DaqRowResult{Err: &tlcerrors.InvalidArgumentError{Field: "row_index", Reason: "out of range"}}
		return
	}
	r.Reply <- DaqRowResult{Row: daq.Table.Row(r.RowIndex)}
}

type InterpFrameResult struct {
	Frame *mat.Dense
	Err   error
}

// GetInterpFrameRequest projects one synchronized frame of the fitted
// interpolation field onto area (§4.7's "per-frame 2-D view").
type GetInterpFrameRequest struct {
	FrameIndex int
	Reply      chan<- InterpFrameResult
}

func (r GetInterpFrameRequest) handle(gs *GlobalState) {
	interp, err := gs.freshInterp()
	if err != nil {
		r.Reply <- InterpFrameResult{Err: err}
		return
	}
	frame, err := interp.Interpolator.Frame(r.FrameIndex)
	r.Reply <- InterpFrameResult{Frame: frame, Err: err}
}

type GreenHistoryResult struct {
	Trace []float64
	Err   error
}

// GetGreenHistoryRequest filters one pixel's raw Green2 trace on
// demand via filter.FilterPoint, so a UI plot of a thermocouple-adjacent
// pixel doesn't require the whole matrix to have gone through Filter
// first.
type GetGreenHistoryRequest struct {
	PointIndex int
	Reply      chan<- GreenHistoryResult
}

func (r GetGreenHistoryRequest) handle(gs *GlobalState) {
	green2, err := gs.freshGreen2()
	if err != nil {
		r.Reply <- GreenHistoryResult{Err: err}
		return
	}
	area, err := gs.area()
	if err != nil {
		r.Reply <- GreenHistoryResult{Err: err}
		return
	}
	y, x := r.PointIndex/int(area.Width), r.PointIndex%int(area.Width)
	trace, err := filter.FilterPoint(green2.Matrix, gs.Setting.FilterMethod, y, x, area)
	r.Reply <- GreenHistoryResult{Trace: trace, Err: err}
}

type Nu2Result struct {
	PNG []byte
	Err error
}

// GetNu2DRequest renders the current Nu2 field through the current
// color range (§4.9), without touching Solve's own Data.
type GetNu2DRequest struct {
	Reply chan<- Nu2Result
}

func (r GetNu2DRequest) handle(gs *GlobalState) {
	png, err := renderNu2(gs)
	r.Reply <- Nu2Result{PNG: png, Err: err}
}

// SetColorRangeRequest installs a new (vmin, vmax) on the current
// Solve result and immediately re-renders it (§4.9 "recomputes a
// palette-mapped PNG of Nu2 without re-solving"). It is a read-query in
// the sense that it never touches Setting or invalidates Nu2.
type SetColorRangeRequest struct {
	VMin, VMax float64
	Reply      chan<- Nu2Result
}

func (r SetColorRangeRequest) handle(gs *GlobalState) {
	solve, err := gs.freshSolve()
	if err != nil {
		r.Reply <- Nu2Result{Err: err}
		return
	}
	if r.VMax <= r.VMin {
		r.Reply <- Nu2Result{Err: &tlcerrors.InvalidArgumentError{Field: "vmax", Reason: "must be greater than vmin"}}
		return
	}
	solve.VMin = r.VMin
	solve.VMax = r.VMax
	solve.HasRange = true
	png, err := renderNu2(gs)
	r.Reply <- Nu2Result{PNG: png, Err: err}
}

func renderNu2(gs *GlobalState) ([]byte, error) {
	solve, err := gs.freshSolve()
	if err != nil {
		return nil, err
	}
	if !solve.HasRange {
		return nil, &tlcerrors.InvalidArgumentError{Field: "nu2", Reason: "every pixel is NaN, no color range to render"}
	}
	res := solve.Result
	return colormap.Render(res.Nu2, res.CalH, res.CalW, solve.VMin, solve.VMax)
}

type PointNuResult struct {
	Nu  float64
	Err error
}

// GetPointNuRequest returns one pixel's Nu value.
type GetPointNuRequest struct {
	Y, X  int
	Reply chan<- PointNuResult
}

func (r GetPointNuRequest) handle(gs *GlobalState) {
	solve, err := gs.freshSolve()
	if err != nil {
		r.Reply <- PointNuResult{Err: err}
		return
	}
	res := solve.Result
	if r.Y < 0 || r.Y >= res.CalH || r.X < 0 || r.X >= res.CalW {
		r.Reply <- PointNuResult{Err: &tlcerrors.InvalidArgumentError{Field: "point", Reason: "out of range"}}
		return
	}
	r.Reply <- PointNuResult{Nu: res.Nu2[r.Y*res.CalW+r.X]}
}

// GetProgressRequest reports Stage's progress monitor snapshot
// (§4.10). Stages with no monitor (ReadVideoMeta, ReadDaqMeta,
// DetectPeak, Interpolate are effectively instantaneous or monitored
// only via their own Data slot) answer Uninitialized.
type GetProgressRequest struct {
	Stage Kind
	Reply chan<- progress.State
}

func (r GetProgressRequest) handle(gs *GlobalState) {
	var mon *progress.Monitor
	switch r.Stage {
	case KindBuildGreen2:
		mon = gs.Progress.Green2
	case KindFilter:
		mon = gs.Progress.Filter
	case KindSolve:
		mon = gs.Progress.Solve
	}
	if mon == nil {
		r.Reply <- progress.State{Uninitialized: true}
		return
	}
	r.Reply <- mon.Get()
}
