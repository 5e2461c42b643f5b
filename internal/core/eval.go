package core

import (
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// evalOutcome is the four-way TaskState of §4.2. It is kept internal
// to this package since nothing outside Reconcile needs to observe it
// directly.
type evalOutcome int

const (
	evalAlreadyCompleted evalOutcome = iota
	evalReadyToGo
	evalDispatchedToOthers
	evalCannotStart
)

type taskState struct {
	outcome evalOutcome
	task    Task
	reason  string
}

// lazyEvaluator memoizes one DAG node's evaluation for the lifetime of
// a single eval() call. The first read of a ReadyToGo result is
// returned once; every later read of the same node within the same
// traversal sees DispatchedToOthers, since traverseDependencyGraph
// only needs to know "is this input ready", not the task itself, once
// it has already been collected (§4.2).
type lazyEvaluator struct {
	eval   func() taskState
	value  *taskState
	primed bool
}

func newLazyEvaluator(eval func() taskState) *lazyEvaluator {
	return &lazyEvaluator{eval: eval}
}

func (le *lazyEvaluator) Eval() taskState {
	if le.primed {
		return *le.value
	}
	ts := le.eval()
	le.primed = true
	if ts.outcome == evalReadyToGo {
		dispatched := taskState{outcome: evalDispatchedToOthers}
		le.value = &dispatched
		return ts
	}
	le.value = &ts
	return ts
}

// traverseDependencyGraph visits nodeID's dependencies bottom-up
// before nodeID itself, short-circuiting nodeID's own evaluation if
// any dependency did not resolve to AlreadyCompleted. It returns true
// only when nodeID itself is AlreadyCompleted, so a parent can tell
// whether it is safe to proceed (§4.2). A ReadyToGo task is appended
// to tasks as a side effect.
func traverseDependencyGraph(evaluators [numTaskKinds]*lazyEvaluator, tasks *[]Task, nodeID Kind) bool {
	allReady := true
	for _, dep := range dependencyGraph[nodeID] {
		if !traverseDependencyGraph(evaluators, tasks, dep) {
			allReady = false
		}
	}
	if !allReady {
		return false
	}

	switch ts := evaluators[nodeID].Eval(); ts.outcome {
	case evalAlreadyCompleted:
		return true
	case evalReadyToGo:
		*tasks = append(*tasks, ts.task)
		return false
	default: // evalDispatchedToOthers, evalCannotStart
		return false
	}
}

// EvalTasks runs the lazy DAG evaluation over the current Setting and
// Data and returns every task that is ready to dispatch right now
// (§4.2). It never mutates GlobalState.
func (gs *GlobalState) EvalTasks() []Task {
	var evaluators [numTaskKinds]*lazyEvaluator
	evaluators[KindReadVideoMeta] = newLazyEvaluator(gs.evalReadVideoMeta)
	evaluators[KindReadDaqMeta] = newLazyEvaluator(gs.evalReadDaqMeta)
	evaluators[KindBuildGreen2] = newLazyEvaluator(gs.evalBuildGreen2)
	evaluators[KindFilter] = newLazyEvaluator(gs.evalFilter)
	evaluators[KindDetectPeak] = newLazyEvaluator(gs.evalDetectPeak)
	evaluators[KindInterpolate] = newLazyEvaluator(gs.evalInterpolate)
	evaluators[KindSolve] = newLazyEvaluator(gs.evalSolve)

	var tasks []Task
	traverseDependencyGraph(evaluators, &tasks, KindSolve)
	return tasks
}

func cannotStart(reason string) taskState {
	return taskState{outcome: evalCannotStart, reason: reason}
}

func readyToGo(task Task) taskState {
	return taskState{outcome: evalReadyToGo, task: task}
}

func (gs *GlobalState) suppressedOrReady(kind Kind, fp setting.Fingerprint, task Task) taskState {
	if gs.Registry.InFlight(kind, fp) {
		return taskState{outcome: evalDispatchedToOthers}
	}
	return readyToGo(task)
}

func (gs *GlobalState) evalReadVideoMeta() taskState {
	if gs.Setting.VideoPath == "" {
		return cannotStart("video path unset")
	}
	fp := gs.Setting.VideoMetaFingerprint()
	if gs.Data.Video != nil && gs.Data.Video.Fingerprint == fp {
		return taskState{outcome: evalAlreadyCompleted}
	}
	return gs.suppressedOrReady(KindReadVideoMeta, fp, ReadVideoMetaTask{FP: fp, Path: gs.Setting.VideoPath})
}

func (gs *GlobalState) evalReadDaqMeta() taskState {
	if gs.Setting.DaqPath == "" {
		return cannotStart("daq path unset")
	}
	fp := gs.Setting.DaqMetaFingerprint()
	if gs.Data.Daq != nil && gs.Data.Daq.Fingerprint == fp {
		return taskState{outcome: evalAlreadyCompleted}
	}
	return gs.suppressedOrReady(KindReadDaqMeta, fp, ReadDaqMetaTask{FP: fp, Path: gs.Setting.DaqPath})
}

func (gs *GlobalState) evalBuildGreen2() taskState {
	video, err := gs.videoData()
	if err != nil {
		return cannotStart(reasonOf(err))
	}
	if _, err := video.Packets.All(); err != nil {
		return cannotStart(reasonOf(err))
	}
	area, err := gs.area()
	if err != nil {
		return cannotStart(reasonOf(err))
	}
	startFrame, _, frameNum, err := gs.synchronized()
	if err != nil {
		return cannotStart(reasonOf(err))
	}
	fp, ok := gs.Setting.Green2Fingerprint()
	if !ok {
		return cannotStart("video and daq not synchronized yet")
	}
	if gs.Data.Green2 != nil && gs.Data.Green2.Fingerprint == fp {
		return taskState{outcome: evalAlreadyCompleted}
	}
	task := BuildGreen2Task{
		FP:         fp,
		Meta:       video.Meta,
		Packets:    video.Packets,
		Area:       area,
		StartFrame: startFrame,
		FrameNum:   frameNum,
	}
	return gs.suppressedOrReady(KindBuildGreen2, fp, task)
}

func (gs *GlobalState) evalFilter() taskState {
	if gs.Data.Green2 == nil {
		return cannotStart("green2 not built yet")
	}
	fp, ok := gs.Setting.FilterFingerprint()
	if !ok {
		return cannotStart("green2 not built yet")
	}
	if gs.Data.Filter != nil && gs.Data.Filter.Fingerprint == fp {
		return taskState{outcome: evalAlreadyCompleted}
	}
	task := FilterTask{FP: fp, Green2: gs.Data.Green2.Matrix, Method: gs.Setting.FilterMethod}
	return gs.suppressedOrReady(KindFilter, fp, task)
}

func (gs *GlobalState) evalDetectPeak() taskState {
	if gs.Data.Filter == nil {
		return cannotStart("filter not applied yet")
	}
	fp, ok := gs.Setting.PeakFingerprint()
	if !ok {
		return cannotStart("filter not applied yet")
	}
	if gs.Data.Peak != nil && gs.Data.Peak.Fingerprint == fp {
		return taskState{outcome: evalAlreadyCompleted}
	}
	task := DetectPeakTask{FP: fp, Filtered: gs.Data.Filter.Matrix}
	return gs.suppressedOrReady(KindDetectPeak, fp, task)
}

func (gs *GlobalState) evalInterpolate() taskState {
	daq, err := gs.daqData()
	if err != nil {
		return cannotStart(reasonOf(err))
	}
	thermocouples, err := gs.thermocouples()
	if err != nil {
		return cannotStart(reasonOf(err))
	}
	method, err := gs.interpMethod()
	if err != nil {
		return cannotStart(reasonOf(err))
	}
	_, startRow, frameNum, err := gs.synchronized()
	if err != nil {
		return cannotStart(reasonOf(err))
	}
	fp, ok := gs.Setting.InterpolateFingerprint()
	if !ok {
		return cannotStart("video and daq not synchronized yet")
	}
	area, err := gs.area()
	if err != nil {
		return cannotStart(reasonOf(err))
	}
	if gs.Data.Interp != nil && gs.Data.Interp.Fingerprint == fp {
		return taskState{outcome: evalAlreadyCompleted}
	}
	task := InterpolateTask{
		FP:            fp,
		Method:        method,
		Area:          area,
		Thermocouples: thermocouples,
		Daq:           daq.Table,
		StartRow:      startRow,
		FrameNum:      frameNum,
	}
	return gs.suppressedOrReady(KindInterpolate, fp, task)
}

func (gs *GlobalState) evalSolve() taskState {
	if gs.Data.Peak == nil {
		return cannotStart("not detect peak yet")
	}
	if gs.Data.Interp == nil {
		return cannotStart("not interp yet")
	}
	fp, ok := gs.Setting.SolveFingerprint()
	if !ok {
		return cannotStart("not interp yet")
	}
	if gs.Data.Solve != nil && gs.Data.Solve.Fingerprint == fp {
		return taskState{outcome: evalAlreadyCompleted}
	}
	frameRate := gs.Setting.VideoMeta.FrameRate
	task := SolveTask{
		FP:               fp,
		GmaxFrameIndexes: gs.Data.Peak.Indexes,
		Interpolator:     gs.Data.Interp,
		Physical:         gs.Setting.Physical,
		Method:           gs.Setting.IterationMethod,
		FrameRate:        frameRate,
	}
	return gs.suppressedOrReady(KindSolve, fp, task)
}

// reasonOf unwraps a PreconditionUnsatisfiedError to its bare reason
// string, matching the prior implementation's vocabulary of plain
// CannotStart{reason} strings (§4.2) rather than this package's
// "precondition unsatisfied: "-prefixed Error() text.
func reasonOf(err error) string {
	if pe, ok := err.(*tlcerrors.PreconditionUnsatisfiedError); ok {
		return pe.Reason
	}
	return err.Error()
}
