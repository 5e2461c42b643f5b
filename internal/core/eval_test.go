package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tlc-project/tlc-core/internal/config"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
	"github.com/tlc-project/tlc-core/internal/videosrc"
)

func TestEvalTasksEmptySettingBlocksOnVideoAndDaq(t *testing.T) {
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)

	tasks := gs.EvalTasks()
	require.Empty(t, tasks, "an empty Setting has nothing ready to dispatch")
}

func TestEvalReadVideoMetaReasonVocabulary(t *testing.T) {
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)

	ts := gs.evalReadVideoMeta()
	require.Equal(t, evalCannotStart, ts.outcome)
	require.Equal(t, "video path unset", ts.reason)
}

func TestEvalReadDaqMetaReasonVocabulary(t *testing.T) {
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)

	ts := gs.evalReadDaqMeta()
	require.Equal(t, evalCannotStart, ts.outcome)
	require.Equal(t, "daq path unset", ts.reason)
}

func TestEvalBuildGreen2ReadyToGoOnceVideoAndDaqLoaded(t *testing.T) {
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)
	meta := setting.VideoMeta{Path: "video.mp4", TotalFrames: 1, FrameRate: 25, Height: 480, Width: 640}
	require.NoError(t, gs.Setting.SetVideoPath("video.mp4", meta))
	require.NoError(t, gs.Setting.SetDaqPath("daq.csv", daqMetaFixture()))
	require.NoError(t, gs.Setting.SetArea(setting.Area{Top: 0, Left: 0, Height: 10, Width: 10}))
	packets := videosrc.NewPacketList(meta)
	require.NoError(t, packets.Push(&videosrc.Packet{FrameIndex: 0, Dts: 0}))
	gs.Data.Video = &VideoData{Fingerprint: gs.Setting.VideoMetaFingerprint(), Meta: meta, Packets: packets}
	gs.Data.Daq = &DaqData{Fingerprint: gs.Setting.DaqMetaFingerprint()}
	require.NoError(t, gs.Setting.SynchronizeVideoAndDaq(0, 0))

	ts := gs.evalBuildGreen2()
	require.Equal(t, evalReadyToGo, ts.outcome)
	require.NotNil(t, ts.task)
	require.Equal(t, KindBuildGreen2, ts.task.Kind())
}

func TestSuppressedOrReadyHonorsInFlightRegistry(t *testing.T) {
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)
	fp := gs.Setting.VideoMetaFingerprint()
	gs.Registry.Register(KindReadVideoMeta, fp)

	ts := gs.suppressedOrReady(KindReadVideoMeta, fp, ReadVideoMetaTask{FP: fp, Path: "x"})
	require.Equal(t, evalDispatchedToOthers, ts.outcome)
}

func TestAreaUnsetPreconditionError(t *testing.T) {
	gs := NewGlobalState(config.EmptyTuningConfig(), nil)

	_, err := gs.area()
	var preconditionErr *tlcerrors.PreconditionUnsatisfiedError
	require.ErrorAs(t, err, &preconditionErr)
	require.Equal(t, "area not selected yet", preconditionErr.Reason)
}
