package setting

import (
	"time"

	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// Setting is the full user-editable configuration for one experiment
// (§3). It is owned exclusively by the reconcile loop; setters return
// either the fresh Setting (by value, immutable snapshot) or an error.
type Setting struct {
	Name        string
	SaveRootDir string

	VideoPath string
	VideoMeta *VideoMeta

	DaqPath string
	DaqMeta *DaqMeta

	StartFrame *int
	StartRow   *int

	Area          *Area
	Thermocouples []Thermocouple

	InterpMethod    *InterpMethod
	FilterMethod    FilterMethod
	IterationMethod IterationMethod
	Physical        PhysicalParam

	CompletedAt *time.Time
}

// Clone returns a deep-enough copy for safe sharing with a reconcile
// loop that never mutates a Setting it has handed out.
func (s Setting) Clone() Setting {
	clone := s
	if s.VideoMeta != nil {
		vm := *s.VideoMeta
		clone.VideoMeta = &vm
	}
	if s.DaqMeta != nil {
		dm := *s.DaqMeta
		clone.DaqMeta = &dm
	}
	if s.StartFrame != nil {
		v := *s.StartFrame
		clone.StartFrame = &v
	}
	if s.StartRow != nil {
		v := *s.StartRow
		clone.StartRow = &v
	}
	if s.Area != nil {
		a := *s.Area
		clone.Area = &a
	}
	if s.Thermocouples != nil {
		clone.Thermocouples = append([]Thermocouple(nil), s.Thermocouples...)
	}
	if s.InterpMethod != nil {
		im := *s.InterpMethod
		clone.InterpMethod = &im
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		clone.CompletedAt = &t
	}
	return clone
}

// FrameNum is the synchronized window length, defined once both
// StartFrame and StartRow are known (§3): min(total_frames -
// start_frame, total_rows - start_row). Returns (0, false) if either
// side of the synchronization is missing.
func (s *Setting) FrameNum() (int, bool) {
	if s.VideoMeta == nil || s.DaqMeta == nil || s.StartFrame == nil || s.StartRow == nil {
		return 0, false
	}
	remainingFrames := s.VideoMeta.TotalFrames - *s.StartFrame
	remainingRows := s.DaqMeta.NRows - *s.StartRow
	n := remainingFrames
	if remainingRows < n {
		n = remainingRows
	}
	if n < 1 {
		return 0, false
	}
	return n, true
}

// SetName validates and applies a new experiment name. Empty names are
// rejected.
func (s *Setting) SetName(name string) error {
	if name == "" {
		return &tlcerrors.InvalidArgumentError{Field: "name", Reason: "must not be empty"}
	}
	s.Name = name
	return nil
}

// SetSaveRootDir validates and applies a new output directory.
func (s *Setting) SetSaveRootDir(dir string) error {
	if dir == "" {
		return &tlcerrors.InvalidArgumentError{Field: "save_root_dir", Reason: "must not be empty"}
	}
	s.SaveRootDir = dir
	return nil
}

// SetVideoPath assigns a new video and its freshly-read metadata.
// Per §3's invariants, this resets start_frame, area, and
// thermocouples, and clears completed_at. start_row is reset too,
// since the two synchronization indices are only set as a pair.
func (s *Setting) SetVideoPath(path string, meta VideoMeta) error {
	if path == "" {
		return &tlcerrors.InvalidArgumentError{Field: "video_path", Reason: "must not be empty"}
	}
	s.VideoPath = path
	s.VideoMeta = &meta
	s.StartFrame = nil
	s.StartRow = nil
	s.Area = nil
	s.Thermocouples = nil
	s.CompletedAt = nil
	return nil
}

// SetDaqPath assigns a new DAQ file and its freshly-read metadata.
// Per §3's invariants, this resets start_row and thermocouples, and
// clears completed_at. start_frame is reset too, since the two
// synchronization indices are only set as a pair.
func (s *Setting) SetDaqPath(path string, meta DaqMeta) error {
	if path == "" {
		return &tlcerrors.InvalidArgumentError{Field: "daq_path", Reason: "must not be empty"}
	}
	s.DaqPath = path
	s.DaqMeta = &meta
	s.StartRow = nil
	s.StartFrame = nil
	s.Thermocouples = nil
	s.CompletedAt = nil
	return nil
}

// SynchronizeVideoAndDaq sets start_frame and start_row together as
// the initial pairing of the two timelines. Both video and DAQ must
// already be loaded.
func (s *Setting) SynchronizeVideoAndDaq(startFrame, startRow int) error {
	if s.VideoMeta == nil {
		return &tlcerrors.InvalidArgumentError{Field: "start_frame", Reason: "video path unset"}
	}
	if s.DaqMeta == nil {
		return &tlcerrors.InvalidArgumentError{Field: "start_row", Reason: "daq path unset"}
	}
	if startFrame < 0 || startFrame >= s.VideoMeta.TotalFrames {
		return &tlcerrors.InvalidArgumentError{Field: "start_frame", Reason: "out of range"}
	}
	if startRow < 0 || startRow >= s.DaqMeta.NRows {
		return &tlcerrors.InvalidArgumentError{Field: "start_row", Reason: "out of range"}
	}
	s.StartFrame = &startFrame
	s.StartRow = &startRow
	s.invalidateFrom("start_index")
	return nil
}

// SetStartFrame moves start_frame and translates start_row by the same
// delta, so the offset between the two timelines is kept; frame_num is
// recomputed from the moved indices. Video and DAQ must already be
// synchronized once (§3, §9).
func (s *Setting) SetStartFrame(frame int) error {
	if s.VideoMeta == nil {
		return &tlcerrors.InvalidArgumentError{Field: "start_frame", Reason: "video path unset"}
	}
	if frame < 0 || frame >= s.VideoMeta.TotalFrames {
		return &tlcerrors.InvalidArgumentError{Field: "start_frame", Reason: "out of range"}
	}
	if s.DaqMeta == nil || s.StartFrame == nil || s.StartRow == nil {
		return &tlcerrors.InvalidArgumentError{Field: "start_frame", Reason: "video and daq not synchronized yet"}
	}
	newRow := *s.StartRow + frame - *s.StartFrame
	if newRow < 0 || newRow >= s.DaqMeta.NRows {
		return &tlcerrors.InvalidArgumentError{Field: "start_frame", Reason: "would move start_row out of range"}
	}
	s.StartFrame = &frame
	s.StartRow = &newRow
	s.invalidateFrom("start_index")
	return nil
}

// SetStartRow moves start_row and translates start_frame by the same
// delta (the converse of SetStartFrame).
func (s *Setting) SetStartRow(row int) error {
	if s.DaqMeta == nil {
		return &tlcerrors.InvalidArgumentError{Field: "start_row", Reason: "daq path unset"}
	}
	if row < 0 || row >= s.DaqMeta.NRows {
		return &tlcerrors.InvalidArgumentError{Field: "start_row", Reason: "out of range"}
	}
	if s.VideoMeta == nil || s.StartFrame == nil || s.StartRow == nil {
		return &tlcerrors.InvalidArgumentError{Field: "start_row", Reason: "video and daq not synchronized yet"}
	}
	newFrame := *s.StartFrame + row - *s.StartRow
	if newFrame < 0 || newFrame >= s.VideoMeta.TotalFrames {
		return &tlcerrors.InvalidArgumentError{Field: "start_row", Reason: "would move start_frame out of range"}
	}
	s.StartRow = &row
	s.StartFrame = &newFrame
	s.invalidateFrom("start_index")
	return nil
}

// SetArea validates and applies a new region of interest; it must fit
// within the video frame. Downstream Green2/Filtered/PeakIdx/Nu2 are
// invalidated.
func (s *Setting) SetArea(a Area) error {
	if s.VideoMeta == nil {
		return &tlcerrors.InvalidArgumentError{Field: "area", Reason: "video path unset"}
	}
	if a.Top+a.Height > s.VideoMeta.Height {
		return &tlcerrors.InvalidArgumentError{Field: "area", Reason: "top+height exceeds video height"}
	}
	if a.Left+a.Width > s.VideoMeta.Width {
		return &tlcerrors.InvalidArgumentError{Field: "area", Reason: "left+width exceeds video width"}
	}
	s.Area = &a
	s.invalidateFrom("area")
	return nil
}

// SetThermocouples validates and applies a new thermocouple list:
// every column index must be < daq.n_columns and columns must be
// unique. At least two are required before interpolation can run, but
// that check happens at the DAG evaluator, not here, since an empty
// list is a legal intermediate state while the user is still editing.
func (s *Setting) SetThermocouples(tcs []Thermocouple) error {
	if s.DaqMeta == nil {
		return &tlcerrors.InvalidArgumentError{Field: "thermocouples", Reason: "daq path unset"}
	}
	seen := make(map[int]struct{}, len(tcs))
	for _, tc := range tcs {
		if tc.ColumnIndex < 0 || tc.ColumnIndex >= s.DaqMeta.NCols {
			return &tlcerrors.InvalidArgumentError{Field: "thermocouples", Reason: "column_index out of range"}
		}
		if _, dup := seen[tc.ColumnIndex]; dup {
			return &tlcerrors.InvalidArgumentError{Field: "thermocouples", Reason: "duplicate column_index"}
		}
		seen[tc.ColumnIndex] = struct{}{}
	}
	s.Thermocouples = append([]Thermocouple(nil), tcs...)
	s.invalidateFrom("thermocouples")
	return nil
}

// SetInterpolationMethod validates and applies a new interpolation
// scheme. Bilinear variants require tc_rows*tc_cols == len(thermocouples)
// and both >= 2 (§4.7 admit-time check).
func (s *Setting) SetInterpolationMethod(m InterpMethod) error {
	if m.Kind == InterpBilinear || m.Kind == InterpBilinearExtrapolate {
		if m.TCRows < 2 || m.TCCols < 2 {
			return &tlcerrors.InterpolationInvalidError{Reason: "bilinear lattice dimensions must both be >= 2"}
		}
		if m.TCRows*m.TCCols != len(s.Thermocouples) {
			return &tlcerrors.InterpolationInvalidError{Reason: "tc_rows*tc_cols must equal the thermocouple count"}
		}
	}
	s.InterpMethod = &m
	s.invalidateFrom("interp_method")
	return nil
}

// SetFilterMethod validates and applies a new temporal filter.
func (s *Setting) SetFilterMethod(m FilterMethod) error {
	switch m.Kind {
	case FilterMedian:
		if m.Window < 1 {
			return &tlcerrors.InvalidArgumentError{Field: "filter_method", Reason: "median window must be >= 1"}
		}
	case FilterWavelet:
		if m.ThresholdRatio <= 0 || m.ThresholdRatio >= 1 {
			return &tlcerrors.InvalidArgumentError{Field: "filter_method", Reason: "wavelet threshold must be in (0,1)"}
		}
	}
	s.FilterMethod = m
	s.invalidateFrom("filter_method")
	return nil
}

// SetIterationMethod validates and applies a new Newton iteration
// variant.
func (s *Setting) SetIterationMethod(m IterationMethod) error {
	if m.H0 <= 0 {
		return &tlcerrors.InvalidArgumentError{Field: "iteration_method", Reason: "h0 must be > 0"}
	}
	if m.MaxIterNum < 1 {
		return &tlcerrors.InvalidArgumentError{Field: "iteration_method", Reason: "max_iter_num must be >= 1"}
	}
	s.IterationMethod = m
	s.invalidateFrom("iteration_method")
	return nil
}

// SetPeakTemperature validates and applies the TLC peak temperature.
// It must lie strictly between the ambient reference and the
// characteristic TLC peak; callers supply both references so this
// package stays free of magic constants.
func (s *Setting) SetPeakTemperature(ambientRef, tlcPeakRef, v float64) error {
	if !(v > ambientRef && v < tlcPeakRef) {
		return &tlcerrors.InvalidArgumentError{Field: "peak_temperature", Reason: "must be strictly between ambient and TLC peak reference"}
	}
	s.Physical.PeakTemperature = v
	s.invalidateFrom("peak_temperature")
	return nil
}

func setPositive(field string, dst *float64, v float64) error {
	if v <= 0 {
		return &tlcerrors.InvalidArgumentError{Field: field, Reason: "must be > 0"}
	}
	*dst = v
	return nil
}

// SetSolidThermalConductivity validates and applies k_s.
func (s *Setting) SetSolidThermalConductivity(v float64) error {
	if err := setPositive("solid_thermal_conductivity", &s.Physical.SolidThermalConductivity, v); err != nil {
		return err
	}
	s.invalidateFrom("solid_thermal_conductivity")
	return nil
}

// SetSolidThermalDiffusivity validates and applies alpha_s.
func (s *Setting) SetSolidThermalDiffusivity(v float64) error {
	if err := setPositive("solid_thermal_diffusivity", &s.Physical.SolidThermalDiffusivity, v); err != nil {
		return err
	}
	s.invalidateFrom("solid_thermal_diffusivity")
	return nil
}

// SetCharacteristicLength validates and applies L.
func (s *Setting) SetCharacteristicLength(v float64) error {
	if err := setPositive("characteristic_length", &s.Physical.CharacteristicLength, v); err != nil {
		return err
	}
	s.invalidateFrom("characteristic_length")
	return nil
}

// SetAirThermalConductivity validates and applies k_a.
func (s *Setting) SetAirThermalConductivity(v float64) error {
	if err := setPositive("air_thermal_conductivity", &s.Physical.AirThermalConductivity, v); err != nil {
		return err
	}
	s.invalidateFrom("air_thermal_conductivity")
	return nil
}

// invalidateFrom clears completed_at whenever a field that any
// downstream stage depends on changes (§3: "cleared on any upstream
// invalidation"). Derived Data invalidation itself is the reconcile
// loop's responsibility (it compares fingerprints); this only clears
// the marker that depends on the full chain completing.
func (s *Setting) invalidateFrom(field string) {
	s.CompletedAt = nil
	_ = field
}
