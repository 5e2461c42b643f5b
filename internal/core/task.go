package core

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/daqsrc"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/videosrc"
)

// Kind identifies one of the seven DAG nodes of §4.2.
type Kind int

const (
	KindReadVideoMeta Kind = iota
	KindReadDaqMeta
	KindBuildGreen2
	KindFilter
	KindDetectPeak
	KindInterpolate
	KindSolve
)

func (k Kind) String() string {
	switch k {
	case KindReadVideoMeta:
		return "read_video_meta"
	case KindReadDaqMeta:
		return "read_daq_meta"
	case KindBuildGreen2:
		return "build_green2"
	case KindFilter:
		return "filter"
	case KindDetectPeak:
		return "detect_peak"
	case KindInterpolate:
		return "interpolate"
	case KindSolve:
		return "solve"
	default:
		return "unknown"
	}
}

// numTaskKinds is len(dependencyGraph); the DAG's node count.
const numTaskKinds = 7

// dependencyGraph lists, for each Kind, the Kinds it depends on. Index
// matches the Kind constants above (§4.2's seven-node redesign, unlike
// the leaner six-node graph this is adapted from, which fused Filter
// and DetectPeak into one node).
var dependencyGraph = [numTaskKinds][]Kind{
	KindReadVideoMeta:  {},
	KindReadDaqMeta:    {},
	KindBuildGreen2:    {KindReadVideoMeta},
	KindFilter:         {KindBuildGreen2},
	KindDetectPeak:     {KindFilter},
	KindInterpolate:    {KindReadDaqMeta},
	KindSolve:          {KindDetectPeak, KindInterpolate},
}

// Task is a self-contained unit of work a stage executor can run
// without touching GlobalState again; Reconcile (§4.2) hands these to
// spawnExecuteTask.
type Task interface {
	Kind() Kind
	Fingerprint() setting.Fingerprint
}

// ReadVideoMetaTask reads a video container's metadata and primes its
// packet-loading infrastructure. FP is VideoMetaFingerprint(), not the
// raw path, so it lines up with what TaskRegistry keys on.
type ReadVideoMetaTask struct {
	FP   setting.Fingerprint
	Path string
}

func (ReadVideoMetaTask) Kind() Kind                        { return KindReadVideoMeta }
func (t ReadVideoMetaTask) Fingerprint() setting.Fingerprint { return t.FP }

// ReadDaqMetaTask loads a DAQ table from disk. FP is DaqMetaFingerprint().
type ReadDaqMetaTask struct {
	FP   setting.Fingerprint
	Path string
}

func (ReadDaqMetaTask) Kind() Kind                        { return KindReadDaqMeta }
func (t ReadDaqMetaTask) Fingerprint() setting.Fingerprint { return t.FP }

// BuildGreen2Task decodes the synchronized window into a Green2 matrix
// (§4.4).
type BuildGreen2Task struct {
	FP         setting.Fingerprint
	Meta       setting.VideoMeta
	Packets    *videosrc.PacketList
	Area       setting.Area
	StartFrame int
	FrameNum   int
}

func (BuildGreen2Task) Kind() Kind                        { return KindBuildGreen2 }
func (t BuildGreen2Task) Fingerprint() setting.Fingerprint { return t.FP }

// FilterTask applies the temporal filter to a Green2 matrix (§4.5).
type FilterTask struct {
	FP     setting.Fingerprint
	Green2 *mat.Dense
	Method setting.FilterMethod
}

func (FilterTask) Kind() Kind                        { return KindFilter }
func (t FilterTask) Fingerprint() setting.Fingerprint { return t.FP }

// DetectPeakTask finds the per-pixel argmax frame of a filtered matrix
// (§4.6).
type DetectPeakTask struct {
	FP       setting.Fingerprint
	Filtered *mat.Dense
}

func (DetectPeakTask) Kind() Kind                        { return KindDetectPeak }
func (t DetectPeakTask) Fingerprint() setting.Fingerprint { return t.FP }

// InterpolateTask fits the selected interpolation scheme over the
// synchronized DAQ window (§4.7).
type InterpolateTask struct {
	FP            setting.Fingerprint
	Method        setting.InterpMethod
	Area          setting.Area
	Thermocouples []setting.Thermocouple
	Daq           *daqsrc.Table
	StartRow      int
	FrameNum      int
}

func (InterpolateTask) Kind() Kind                        { return KindInterpolate }
func (t InterpolateTask) Fingerprint() setting.Fingerprint { return t.FP }

// SolveTask computes the Nu2 field (§4.8).
type SolveTask struct {
	FP               setting.Fingerprint
	GmaxFrameIndexes []uint32
	Interpolator     *InterpolateData
	Physical         setting.PhysicalParam
	Method           setting.IterationMethod
	FrameRate        int
}

func (SolveTask) Kind() Kind                        { return KindSolve }
func (t SolveTask) Fingerprint() setting.Fingerprint { return t.FP }

// TaskRegistry records, per Kind, the fingerprint of the task most
// recently dispatched for it (§4.2). A fresh evaluation whose
// fingerprint matches the registered one is suppressed as
// DispatchedToOthers; Clear drops the entry once its outcome lands (or
// is discarded as stale).
type TaskRegistry struct {
	dispatched [numTaskKinds]*setting.Fingerprint
}

// NewTaskRegistry returns an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{}
}

// InFlight reports whether fp is the fingerprint currently registered
// for kind.
func (r *TaskRegistry) InFlight(kind Kind, fp setting.Fingerprint) bool {
	cur := r.dispatched[kind]
	return cur != nil && *cur == fp
}

// Register records fp as in flight for kind.
func (r *TaskRegistry) Register(kind Kind, fp setting.Fingerprint) {
	f := fp
	r.dispatched[kind] = &f
}

// Clear drops kind's in-flight entry if it still matches fp; a
// mismatch means a newer task has already superseded it and clearing
// would incorrectly un-suppress that newer dispatch.
func (r *TaskRegistry) Clear(kind Kind, fp setting.Fingerprint) {
	cur := r.dispatched[kind]
	if cur != nil && *cur == fp {
		r.dispatched[kind] = nil
	}
}
