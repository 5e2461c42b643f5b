// Package setting owns the Setting half of GlobalState: the
// user-editable configuration for one TLC experiment (§3), its setter
// invariants, its fingerprinting, and its sqlite-backed persistence
// (§6).
package setting

// VideoMeta describes a loaded video container.
type VideoMeta struct {
	Path       string
	TotalFrames int
	FrameRate  int
	Height     uint32
	Width      uint32
}

// DaqMeta describes a loaded DAQ data table.
type DaqMeta struct {
	Path    string
	NRows   int
	NCols   int
}

// Area is the region of interest within the video frame:
// (top, left, height, width).
type Area struct {
	Top, Left, Height, Width uint32
}

// Thermocouple maps one DAQ column to a spatial anchor. Position need
// not lie inside Area — coordinates may be negative.
type Thermocouple struct {
	ColumnIndex int
	PosY, PosX  int32
}

// FilterKind tags the temporal filter applied to Green2 (§4.5).
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterMedian
	FilterWavelet
)

// FilterMethod is the tagged-variant filter selection.
type FilterMethod struct {
	Kind FilterKind
	// Window is the running-median window, valid when Kind == FilterMedian.
	Window int
	// ThresholdRatio is the wavelet soft-threshold ratio in (0,1), valid
	// when Kind == FilterWavelet.
	ThresholdRatio float64
}

// InterpKind tags the six interpolation schemes of §4.7.
type InterpKind int

const (
	InterpHorizontal InterpKind = iota
	InterpHorizontalExtrapolate
	InterpVertical
	InterpVerticalExtrapolate
	InterpBilinear
	InterpBilinearExtrapolate
)

// InterpMethod is the tagged-variant interpolation selection.
// TCRows/TCCols are only meaningful for the two Bilinear variants.
type InterpMethod struct {
	Kind         InterpKind
	TCRows, TCCols int
}

// IterKind tags the two Newton iteration variants of §4.8.
type IterKind int

const (
	IterNewtonTangent IterKind = iota
	IterNewtonDown
)

// IterationMethod is the tagged-variant solver selection.
type IterationMethod struct {
	Kind       IterKind
	H0         float64
	MaxIterNum int
}

// PhysicalParam holds the five strictly-positive physical scalars
// consumed by the solver.
type PhysicalParam struct {
	PeakTemperature           float64
	SolidThermalConductivity  float64
	SolidThermalDiffusivity   float64
	CharacteristicLength      float64
	AirThermalConductivity    float64
}
