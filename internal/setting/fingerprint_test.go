package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoMetaFingerprintChangesWithPath(t *testing.T) {
	s := newLoadedSetting(t)
	fp1 := s.VideoMetaFingerprint()
	require.NoError(t, s.SetVideoPath("/videos/c.avi", VideoMeta{Path: "/videos/c.avi", TotalFrames: 1000, FrameRate: 25, Height: 480, Width: 640}))
	fp2 := s.VideoMetaFingerprint()
	assert.NotEqual(t, fp1, fp2)
}

func TestGreen2FingerprintRequiresAreaAndSync(t *testing.T) {
	s := newLoadedSetting(t)
	_, ok := s.Green2Fingerprint()
	assert.False(t, ok)

	require.NoError(t, s.SynchronizeVideoAndDaq(10, 20))
	_, ok = s.Green2Fingerprint()
	assert.False(t, ok, "still missing area")

	require.NoError(t, s.SetArea(Area{Height: 480, Width: 640}))
	fp, ok := s.Green2Fingerprint()
	require.True(t, ok)
	assert.NotEmpty(t, fp)
}

func TestGreen2FingerprintStableAcrossUnrelatedChanges(t *testing.T) {
	s := newLoadedSetting(t)
	require.NoError(t, s.SynchronizeVideoAndDaq(10, 20))
	require.NoError(t, s.SetArea(Area{Height: 480, Width: 640}))
	fp1, ok := s.Green2Fingerprint()
	require.True(t, ok)

	require.NoError(t, s.SetName("renamed"))
	fp2, ok := s.Green2Fingerprint()
	require.True(t, ok)
	assert.Equal(t, fp1, fp2)
}

func TestGreen2FingerprintChangesWithArea(t *testing.T) {
	s := newLoadedSetting(t)
	require.NoError(t, s.SynchronizeVideoAndDaq(10, 20))
	require.NoError(t, s.SetArea(Area{Height: 480, Width: 640}))
	fp1, _ := s.Green2Fingerprint()

	require.NoError(t, s.SetArea(Area{Height: 100, Width: 100}))
	fp2, _ := s.Green2Fingerprint()

	assert.NotEqual(t, fp1, fp2)
}

func TestFilterFingerprintDependsOnGreen2(t *testing.T) {
	s := newLoadedSetting(t)
	require.NoError(t, s.SynchronizeVideoAndDaq(10, 20))
	require.NoError(t, s.SetArea(Area{Height: 480, Width: 640}))
	fp1, ok := s.FilterFingerprint()
	require.True(t, ok)

	require.NoError(t, s.SetFilterMethod(FilterMethod{Kind: FilterMedian, Window: 5}))
	fp2, ok := s.FilterFingerprint()
	require.True(t, ok)
	assert.NotEqual(t, fp1, fp2)
}

func TestPeakFingerprintMirrorsFilter(t *testing.T) {
	s := newLoadedSetting(t)
	require.NoError(t, s.SynchronizeVideoAndDaq(10, 20))
	require.NoError(t, s.SetArea(Area{Height: 480, Width: 640}))
	filterFP, ok := s.FilterFingerprint()
	require.True(t, ok)
	peakFP, ok := s.PeakFingerprint()
	require.True(t, ok)
	assert.Equal(t, filterFP, peakFP)
}

func TestInterpolateFingerprintRequiresThermocouplesAndMethod(t *testing.T) {
	s := newLoadedSetting(t)
	require.NoError(t, s.SynchronizeVideoAndDaq(10, 20))
	_, ok := s.InterpolateFingerprint()
	assert.False(t, ok)

	require.NoError(t, s.SetThermocouples([]Thermocouple{{ColumnIndex: 0}, {ColumnIndex: 1}}))
	_, ok = s.InterpolateFingerprint()
	assert.False(t, ok, "still missing interp method")

	require.NoError(t, s.SetInterpolationMethod(InterpMethod{Kind: InterpHorizontal}))
	fp, ok := s.InterpolateFingerprint()
	require.True(t, ok)
	assert.NotEmpty(t, fp)
}

func TestSolveFingerprintDependsOnPhysicalParams(t *testing.T) {
	s := newLoadedSetting(t)
	require.NoError(t, s.SynchronizeVideoAndDaq(10, 20))
	require.NoError(t, s.SetArea(Area{Height: 480, Width: 640}))
	require.NoError(t, s.SetThermocouples([]Thermocouple{{ColumnIndex: 0}, {ColumnIndex: 1}}))
	require.NoError(t, s.SetInterpolationMethod(InterpMethod{Kind: InterpHorizontal}))
	require.NoError(t, s.SetPeakTemperature(20, 50, 35))
	require.NoError(t, s.SetSolidThermalConductivity(0.2))
	require.NoError(t, s.SetSolidThermalDiffusivity(1e-7))
	require.NoError(t, s.SetCharacteristicLength(0.01))
	require.NoError(t, s.SetAirThermalConductivity(0.026))
	fp1, ok := s.SolveFingerprint()
	require.True(t, ok)

	require.NoError(t, s.SetAirThermalConductivity(0.03))
	fp2, ok := s.SolveFingerprint()
	require.True(t, ok)
	assert.NotEqual(t, fp1, fp2)
}
