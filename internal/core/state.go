// Package core owns GlobalState (§4.1): the single in-memory Setting
// plus its derived Data, the Request/Outcome RPC surface, and the
// reconcile loop that keeps Data in sync with Setting by running the
// seven-node stage DAG of §4.2. Persistence of named Setting records
// is an external collaborator (internal/setting.Store); this package
// operates on exactly one active Setting at a time.
package core

import (
	"github.com/tlc-project/tlc-core/internal/config"
	"github.com/tlc-project/tlc-core/internal/fsutil"
	"github.com/tlc-project/tlc-core/internal/monitoring"
	"github.com/tlc-project/tlc-core/internal/progress"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/timeutil"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
	"github.com/tlc-project/tlc-core/internal/videosrc"
)

// Progress groups the monitors for every long-running stage (§4.10);
// get_progress(stage) reads through these without touching the loop.
type Progress struct {
	Green2 *progress.Monitor
	Filter *progress.Monitor
	Peak   *progress.Monitor
	Solve  *progress.Monitor
}

// GlobalState is the event loop's owned struct (§9 "global mutable
// state is confined to the event loop's owned struct"): the active
// Setting, every Data slot derived from it, the per-stage
// TaskRegistry, and the tuning knobs stage executors consult.
type GlobalState struct {
	Setting  setting.Setting
	Data     Data
	Registry *TaskRegistry
	Progress Progress
	Tuning   *config.TuningConfig

	// Container opens on-disk video files for ReadVideoMetaTask.
	// Parsing the container format itself is an external collaborator
	// (videosrc package doc); a deployment wires in whatever concrete
	// reader matches its video format. Left nil, ReadVideoMetaTask
	// fails immediately and logs why.
	Container videosrc.ContainerReader

	// Store persists named Setting rows (§6); a deployment with no
	// persistence need leaves this nil and SaveSetting/LoadSetting
	// return an error instead of panicking.
	Store *setting.Store
	// RowID is Store's surrogate id for the active Setting, once it has
	// been created or loaded.
	RowID *int64

	// FS writes the on-disk artifact set under Setting.SaveRootDir
	// (§6, §12 item 1). Defaults to the real filesystem.
	FS fsutil.FileSystem
	// Clock stamps CompletedAt when a Solve outcome lands.
	Clock timeutil.Clock
}

// NewGlobalState returns an empty loop state ready to accept write
// requests. tuning may be nil, in which case every stage executor
// falls back to config's built-in defaults. container may be nil; see
// GlobalState.Container.
func NewGlobalState(tuning *config.TuningConfig, container videosrc.ContainerReader) *GlobalState {
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	return &GlobalState{
		Registry: NewTaskRegistry(),
		Progress: Progress{
			Green2: &progress.Monitor{},
			Filter: &progress.Monitor{},
			Peak:   &progress.Monitor{},
			Solve:  &progress.Monitor{},
		},
		Tuning:    tuning,
		Container: container,
		FS:        fsutil.OSFileSystem{},
		Clock:     timeutil.RealClock{},
	}
}

// videoData returns the loaded video, or the precondition error the
// rest of the DAG surfaces when it is missing.
func (gs *GlobalState) videoData() (*VideoData, error) {
	if gs.Data.Video == nil {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "video not loaded yet"}
	}
	return gs.Data.Video, nil
}

// daqData returns the loaded DAQ table, or a precondition error.
func (gs *GlobalState) daqData() (*DaqData, error) {
	if gs.Data.Daq == nil {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "daq not loaded yet"}
	}
	return gs.Data.Daq, nil
}

// synchronized returns the current (startFrame, startRow, frameNum)
// triple, or a precondition error if video/daq are not yet paired.
func (gs *GlobalState) synchronized() (startFrame, startRow, frameNum int, err error) {
	frameNum, ok := gs.Setting.FrameNum()
	if !ok {
		return 0, 0, 0, &tlcerrors.PreconditionUnsatisfiedError{Reason: "video and daq not synchronized yet"}
	}
	return *gs.Setting.StartFrame, *gs.Setting.StartRow, frameNum, nil
}

// area returns the active region of interest, or a precondition
// error.
func (gs *GlobalState) area() (setting.Area, error) {
	if gs.Setting.Area == nil {
		return setting.Area{}, &tlcerrors.PreconditionUnsatisfiedError{Reason: "area not selected yet"}
	}
	return *gs.Setting.Area, nil
}

// interpMethod returns the selected interpolation scheme, or a
// precondition error.
func (gs *GlobalState) interpMethod() (setting.InterpMethod, error) {
	if gs.Setting.InterpMethod == nil {
		return setting.InterpMethod{}, &tlcerrors.PreconditionUnsatisfiedError{Reason: "interp method unset"}
	}
	return *gs.Setting.InterpMethod, nil
}

// thermocouples returns the active thermocouple list, or a
// precondition error if none have been set yet or fewer than two are
// set.
func (gs *GlobalState) thermocouples() ([]setting.Thermocouple, error) {
	if len(gs.Setting.Thermocouples) == 0 {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "thermocouples unset"}
	}
	if len(gs.Setting.Thermocouples) < 2 {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "at least two thermocouples required"}
	}
	return gs.Setting.Thermocouples, nil
}

// logf routes through monitoring.Logf at call time (not a captured
// copy) so SetLogger takes effect for messages already queued behind
// this indirection.
func logf(format string, v ...interface{}) {
	monitoring.Logf(format, v...)
}
