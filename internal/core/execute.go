package core

import (
	"context"

	"github.com/tlc-project/tlc-core/internal/daqsrc"
	"github.com/tlc-project/tlc-core/internal/filter"
	"github.com/tlc-project/tlc-core/internal/interp"
	"github.com/tlc-project/tlc-core/internal/peak"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/solve"
	"github.com/tlc-project/tlc-core/internal/videosrc"
)

// spawnExecuteTask launches task's stage executor on its own goroutine,
// which sends the resulting Outcome back on outcomes. A failed task
// only logs its error: the TaskRegistry entry Reconcile registered for
// it before the spawn is left in place, so the same (Kind, Fingerprint)
// pair is not retried until some Setting edit produces a different
// fingerprint (§4.2, §9 "no automatic retry of a failed input").
func spawnExecuteTask(ctx context.Context, gs *GlobalState, task Task, outcomes chan<- Outcome) {
	switch t := task.(type) {
	case ReadVideoMetaTask:
		go gs.executeReadVideoMeta(ctx, t, outcomes)
	case ReadDaqMetaTask:
		go gs.executeReadDaqMeta(t, outcomes)
	case BuildGreen2Task:
		go gs.executeBuildGreen2(ctx, t, outcomes)
	case FilterTask:
		go gs.executeFilter(ctx, t, outcomes)
	case DetectPeakTask:
		go gs.executeDetectPeak(ctx, t, outcomes)
	case InterpolateTask:
		go gs.executeInterpolate(t, outcomes)
	case SolveTask:
		go gs.executeSolve(ctx, t, outcomes)
	}
}

// executeReadVideoMeta opens t.Path, publishing its metadata and
// packet-loading infrastructure as soon as the container header is
// known; the forward packet scan and decoder pool keep running in the
// background after this function returns (§4.3).
func (gs *GlobalState) executeReadVideoMeta(ctx context.Context, t ReadVideoMetaTask, outcomes chan<- Outcome) {
	if gs.Container == nil {
		logf("read_video_meta %s: no container reader configured", t.Path)
		return
	}
	containerMeta, packets, errc, err := gs.Container.Open(t.Path)
	if err != nil {
		logf("read_video_meta %s: %v", t.Path, err)
		return
	}
	meta := setting.VideoMeta{
		Path:        t.Path,
		TotalFrames: containerMeta.TotalFrames,
		FrameRate:   containerMeta.FrameRate,
		Height:      containerMeta.Height,
		Width:       containerMeta.Width,
	}

	packetList := videosrc.NewPacketList(meta)
	cache := videosrc.NewPacketCache(gs.Tuning.GetPacketCacheCapacity())
	ring := videosrc.NewSeekRing(gs.Tuning.GetRingSize())
	pool := videosrc.NewDecoderPool(meta, ring, cache, packetList, gs.Tuning.GetDecoderWorkers(), gs.Tuning.GetFrameThumbnailQuality())

	go pool.Run(ctx)
	go func() {
		for p := range packets {
			if err := packetList.Push(p); err != nil {
				logf("read_video_meta %s: %v", t.Path, err)
				return
			}
		}
		if err := <-errc; err != nil {
			logf("read_video_meta %s: packet scan failed: %v", t.Path, err)
		}
	}()

	outcomes <- ReadVideoMetaOutcome{
		FP: t.FP,
		Data: &VideoData{
			Fingerprint: t.FP,
			Meta:        meta,
			Packets:     packetList,
			Cache:       cache,
			Ring:        ring,
			Pool:        pool,
		},
	}
}

func (gs *GlobalState) executeReadDaqMeta(t ReadDaqMetaTask, outcomes chan<- Outcome) {
	table, err := daqsrc.Read(t.Path)
	if err != nil {
		logf("read_daq_meta %s: %v", t.Path, err)
		return
	}
	meta := setting.DaqMeta{Path: t.Path, NRows: table.NRows, NCols: table.NCols}
	outcomes <- ReadDaqMetaOutcome{FP: t.FP, Data: &DaqData{Fingerprint: t.FP, Meta: meta, Table: table}}
}

func (gs *GlobalState) executeBuildGreen2(ctx context.Context, t BuildGreen2Task, outcomes chan<- Outcome) {
	matrix, err := videosrc.BuildGreen2(ctx, t.Meta, t.Packets, t.Area, t.StartFrame, t.FrameNum, gs.Tuning.GetGreen2ChunkSize(), gs.Progress.Green2)
	if err != nil {
		logf("build_green2: %v", err)
		return
	}
	outcomes <- BuildGreen2Outcome{FP: t.FP, Matrix: matrix}
}

func (gs *GlobalState) executeFilter(ctx context.Context, t FilterTask, outcomes chan<- Outcome) {
	matrix, err := filter.Apply(ctx, t.Green2, t.Method, gs.Tuning.GetGreen2ChunkSize(), gs.Progress.Filter)
	if err != nil {
		logf("filter: %v", err)
		return
	}
	outcomes <- FilterOutcome{FP: t.FP, Matrix: matrix}
}

func (gs *GlobalState) executeDetectPeak(ctx context.Context, t DetectPeakTask, outcomes chan<- Outcome) {
	indexes, err := peak.Detect(ctx, t.Filtered, gs.Tuning.GetGreen2ChunkSize())
	if err != nil {
		logf("detect_peak: %v", err)
		return
	}
	outcomes <- DetectPeakOutcome{FP: t.FP, Indexes: indexes}
}

func (gs *GlobalState) executeInterpolate(t InterpolateTask, outcomes chan<- Outcome) {
	interpolator, err := interp.Build(t.Method, t.Area, t.Thermocouples, t.Daq, t.StartRow, t.FrameNum)
	if err != nil {
		logf("interpolate: %v", err)
		return
	}
	outcomes <- InterpolateOutcome{FP: t.FP, Interpolator: interpolator}
}

func (gs *GlobalState) executeSolve(ctx context.Context, t SolveTask, outcomes chan<- Outcome) {
	result, err := solve.Solve(
		ctx, t.GmaxFrameIndexes, t.Interpolator.Interpolator, t.Physical, t.Method, t.FrameRate,
		gs.Tuning.GetNewtonDownMaxHalvings(), gs.Tuning.GetNewtonConvergenceTolerance(), gs.Tuning.GetGreen2ChunkSize(),
		gs.Progress.Solve,
	)
	if err != nil {
		logf("solve: %v", err)
		return
	}
	outcomes <- SolveOutcome{FP: t.FP, Result: result}
}
