package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tlc-project/tlc-core/internal/config"
	"github.com/tlc-project/tlc-core/internal/setting"
)

func videoMetaFixture() setting.VideoMeta {
	return setting.VideoMeta{Path: "video.mp4", TotalFrames: 1000, FrameRate: 25, Height: 480, Width: 640}
}

func daqMetaFixture() setting.DaqMeta {
	return setting.DaqMeta{Path: "daq.csv", NRows: 2000, NCols: 4}
}

// syncedGlobalState returns a GlobalState whose Setting is wired all
// the way through Solve's dependency chain (video, daq, a
// synchronized window, area, thermocouples, interpolation method), so
// every fingerprint function in internal/setting returns (fp, true)
// against it.
func syncedGlobalState(t *testing.T) *GlobalState {
	t.Helper()
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)
	require.NoError(t, gs.Setting.SetVideoPath("video.mp4", videoMetaFixture()))
	require.NoError(t, gs.Setting.SetDaqPath("daq.csv", daqMetaFixture()))
	require.NoError(t, gs.Setting.SynchronizeVideoAndDaq(0, 0))
	require.NoError(t, gs.Setting.SetArea(setting.Area{Top: 0, Left: 0, Height: 2, Width: 2}))
	require.NoError(t, gs.Setting.SetThermocouples([]setting.Thermocouple{{ColumnIndex: 0}, {ColumnIndex: 1}, {ColumnIndex: 2}, {ColumnIndex: 3}}))
	require.NoError(t, gs.Setting.SetInterpolationMethod(setting.InterpMethod{Kind: setting.InterpBilinear, TCRows: 2, TCCols: 2}))
	return gs
}
