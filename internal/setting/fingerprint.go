package setting

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint identifies the exact Setting subset a stage consumed to
// produce a result (§3, §4.2). Two fingerprints are equal iff every
// field feeding the stage was equal at computation time.
type Fingerprint string

func hashOf(parts ...interface{}) Fingerprint {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// Encode errors only occur for unsupported types (channels,
		// funcs); every fingerprint input here is plain data.
		_ = enc.Encode(p)
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// VideoMetaFingerprint covers the ReadVideoMeta node: video_path only.
func (s *Setting) VideoMetaFingerprint() Fingerprint {
	return hashOf(s.VideoPath)
}

// DaqMetaFingerprint covers the ReadDaqMeta node: daq_path only.
func (s *Setting) DaqMetaFingerprint() Fingerprint {
	return hashOf(s.DaqPath)
}

// Green2Fingerprint covers BuildGreen2: video_path, the synchronized
// window, and the region of interest.
func (s *Setting) Green2Fingerprint() (Fingerprint, bool) {
	frameNum, ok := s.FrameNum()
	if !ok || s.Area == nil {
		return "", false
	}
	return hashOf(s.VideoPath, *s.StartFrame, frameNum, *s.Area), true
}

// FilterFingerprint covers Filter: Green2's fingerprint plus the
// active filter method.
func (s *Setting) FilterFingerprint() (Fingerprint, bool) {
	green2, ok := s.Green2Fingerprint()
	if !ok {
		return "", false
	}
	return hashOf(green2, s.FilterMethod), true
}

// PeakFingerprint covers DetectPeak: it depends solely on Filter's
// fingerprint, since peak detection has no independent inputs.
func (s *Setting) PeakFingerprint() (Fingerprint, bool) {
	return s.FilterFingerprint()
}

// InterpolateFingerprint covers Interpolate: daq_path, the
// synchronized window, thermocouple placement, and interpolation
// method.
func (s *Setting) InterpolateFingerprint() (Fingerprint, bool) {
	frameNum, ok := s.FrameNum()
	if !ok || s.InterpMethod == nil || len(s.Thermocouples) == 0 {
		return "", false
	}
	return hashOf(s.DaqPath, *s.StartRow, frameNum, s.Thermocouples, *s.InterpMethod), true
}

// SolveFingerprint covers Solve: DetectPeak's and Interpolate's
// fingerprints plus the physical parameters and iteration method.
func (s *Setting) SolveFingerprint() (Fingerprint, bool) {
	peak, ok := s.PeakFingerprint()
	if !ok {
		return "", false
	}
	interp, ok := s.InterpolateFingerprint()
	if !ok {
		return "", false
	}
	return hashOf(peak, interp, s.Physical, s.IterationMethod), true
}
