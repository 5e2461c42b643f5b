package core

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/interp"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/solve"
)

// Outcome is what a stage executor's goroutine hands back to Reconcile
// once its work finishes (§4.1, §4.2). apply installs the result into
// GlobalState.Data and clears the task's TaskRegistry entry; both the
// loop goroutine and Reconcile.apply run single-threaded, so apply
// never needs its own synchronization.
//
// Setting may have changed while the task that produced this Outcome
// was in flight (§5's S5 scenario). apply always recomputes the
// stage's live fingerprint from the current Setting before writing
// anything and silently discards the Outcome on a mismatch — a stale
// result must never populate a Data slot (§3, Testable Property 2).
// TaskRegistry.Clear is still called with the Outcome's own
// fingerprint either way: if a newer task has since been registered
// under a different fingerprint, Clear is already a safe no-op.
type Outcome interface {
	apply(gs *GlobalState)
}

// ReadVideoMetaOutcome installs a freshly opened video's metadata and
// packet-loading infrastructure.
type ReadVideoMetaOutcome struct {
	FP   setting.Fingerprint
	Data *VideoData
}

func (o ReadVideoMetaOutcome) apply(gs *GlobalState) {
	defer gs.Registry.Clear(KindReadVideoMeta, o.FP)
	if o.FP != gs.Setting.VideoMetaFingerprint() {
		return
	}
	gs.Data.Video = o.Data
}

// ReadDaqMetaOutcome installs a freshly loaded DAQ table.
type ReadDaqMetaOutcome struct {
	FP   setting.Fingerprint
	Data *DaqData
}

func (o ReadDaqMetaOutcome) apply(gs *GlobalState) {
	defer gs.Registry.Clear(KindReadDaqMeta, o.FP)
	if o.FP != gs.Setting.DaqMetaFingerprint() {
		return
	}
	gs.Data.Daq = o.Data
}

// BuildGreen2Outcome installs a freshly built Green2 matrix.
type BuildGreen2Outcome struct {
	FP     setting.Fingerprint
	Matrix *mat.Dense
}

func (o BuildGreen2Outcome) apply(gs *GlobalState) {
	defer gs.Registry.Clear(KindBuildGreen2, o.FP)
	if fp, ok := gs.Setting.Green2Fingerprint(); !ok || fp != o.FP {
		return
	}
	gs.Data.Green2 = &Green2Data{Fingerprint: o.FP, Matrix: o.Matrix}
}

// FilterOutcome installs a freshly filtered matrix.
type FilterOutcome struct {
	FP     setting.Fingerprint
	Matrix *mat.Dense
}

func (o FilterOutcome) apply(gs *GlobalState) {
	defer gs.Registry.Clear(KindFilter, o.FP)
	if fp, ok := gs.Setting.FilterFingerprint(); !ok || fp != o.FP {
		return
	}
	gs.Data.Filter = &FilterData{Fingerprint: o.FP, Matrix: o.Matrix}
}

// DetectPeakOutcome installs freshly detected peak frame indexes.
type DetectPeakOutcome struct {
	FP      setting.Fingerprint
	Indexes []uint32
}

func (o DetectPeakOutcome) apply(gs *GlobalState) {
	defer gs.Registry.Clear(KindDetectPeak, o.FP)
	if fp, ok := gs.Setting.PeakFingerprint(); !ok || fp != o.FP {
		return
	}
	gs.Data.Peak = &PeakData{Fingerprint: o.FP, Indexes: o.Indexes}
}

// InterpolateOutcome installs a freshly built Interpolator.
type InterpolateOutcome struct {
	FP           setting.Fingerprint
	Interpolator *interp.Interpolator
}

func (o InterpolateOutcome) apply(gs *GlobalState) {
	defer gs.Registry.Clear(KindInterpolate, o.FP)
	if fp, ok := gs.Setting.InterpolateFingerprint(); !ok || fp != o.FP {
		return
	}
	gs.Data.Interp = &InterpolateData{Fingerprint: o.FP, Interpolator: o.Interpolator}
}

// SolveOutcome installs a freshly solved Nu2 field, seeding its color
// range from the field's own finite extent (§4.9) until a caller picks
// a different one via SetColorRangeRequest.
type SolveOutcome struct {
	FP     setting.Fingerprint
	Result *solve.Result
}

func (o SolveOutcome) apply(gs *GlobalState) {
	defer gs.Registry.Clear(KindSolve, o.FP)
	if fp, ok := gs.Setting.SolveFingerprint(); !ok || fp != o.FP {
		return
	}
	vmin, vmax, hasRange := finiteRange(o.Result.Nu2)
	gs.Data.Solve = &SolveData{Fingerprint: o.FP, Result: o.Result, VMin: vmin, VMax: vmax, HasRange: hasRange}
	if gs.Clock != nil {
		now := gs.Clock.Now()
		gs.Setting.CompletedAt = &now
	}
}

// finiteRange returns the min/max of values' non-NaN entries, or
// (0, 0, false) if every entry is NaN.
func finiteRange(values []float64) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}
