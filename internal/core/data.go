package core

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/daqsrc"
	"github.com/tlc-project/tlc-core/internal/interp"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/solve"
	"github.com/tlc-project/tlc-core/internal/videosrc"
)

// VideoData is everything the loop knows about the currently loaded
// video container: its metadata, the forward-scanned packet list and
// the smooth-seek infrastructure built on top of it (§4.3).
type VideoData struct {
	Fingerprint setting.Fingerprint
	Meta        setting.VideoMeta
	Packets     *videosrc.PacketList
	Cache       *videosrc.PacketCache
	Ring        *videosrc.SeekRing
	Pool        *videosrc.DecoderPool
}

// DaqData is the loaded DAQ table.
type DaqData struct {
	Fingerprint setting.Fingerprint
	Meta        setting.DaqMeta
	Table       *daqsrc.Table
}

// Green2Data is BuildGreen2's product, tagged with the fingerprint it
// was computed from so the loop can tell whether it is still valid
// for the current Setting (§3).
type Green2Data struct {
	Fingerprint setting.Fingerprint
	Matrix      *mat.Dense
}

// FilterData is Filter's product.
type FilterData struct {
	Fingerprint setting.Fingerprint
	Matrix      *mat.Dense
}

// PeakData is DetectPeak's product.
type PeakData struct {
	Fingerprint setting.Fingerprint
	Indexes     []uint32
}

// InterpolateData is Interpolate's product.
type InterpolateData struct {
	Fingerprint  setting.Fingerprint
	Interpolator *interp.Interpolator
}

// SolveData is Solve's product.
type SolveData struct {
	Fingerprint setting.Fingerprint
	Result      *solve.Result
	VMin, VMax  float64
	HasRange    bool
}

// Data holds every derived product the loop currently has published.
// A nil field means that stage has not produced a (still-valid) result
// for the current Setting; Reconcile (§4.2) is what fills it in.
type Data struct {
	Video  *VideoData
	Daq    *DaqData
	Green2 *Green2Data
	Filter *FilterData
	Peak   *PeakData
	Interp *InterpolateData
	Solve  *SolveData
}
