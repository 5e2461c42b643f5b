package core

import (
	"github.com/tlc-project/tlc-core/internal/daqsrc"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/videosrc"
)

// ambientTemperatureRef and tlcPeakTemperatureRef bound
// set_peak_temperature (§3): the target must lie strictly between
// them. They are generic physical bounds (freezing/boiling point of
// water in Celsius) rather than any one TLC sheet's characteristic
// play range, since the core has no way to know which sheet is in use.
const (
	ambientTemperatureRef = 0.0
	tlcPeakTemperatureRef = 100.0
)

// WriteResult is what every write request's Reply channel carries
// (§4.1 "Accepted/Rejected"): the fresh Setting snapshot on success,
// or the rejection reason as Err.
type WriteResult struct {
	Setting setting.Setting
	Err     error
}

// Request is one write command the reconcile loop accepts on its
// input channel. handle applies it to gs and is always called from the
// loop goroutine.
type Request interface {
	handle(gs *GlobalState)
}

func respond(gs *GlobalState, reply chan<- WriteResult, err error) {
	if reply == nil {
		return
	}
	reply <- WriteResult{Setting: gs.Setting.Clone(), Err: err}
}

type SetNameRequest struct {
	Name  string
	Reply chan<- WriteResult
}

func (r SetNameRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetName(r.Name))
}

type SetSaveRootDirRequest struct {
	Dir   string
	Reply chan<- WriteResult
}

func (r SetSaveRootDirRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetSaveRootDir(r.Dir))
}

// SetVideoPathRequest opens path's container header synchronously (the
// user gets immediate feedback on a bad path) and stores its metadata;
// the heavy packet demux and decoder infrastructure are built
// asynchronously by ReadVideoMetaTask once Reconcile sees the new
// video_path (§4.2, §4.3).
type SetVideoPathRequest struct {
	Path  string
	Reply chan<- WriteResult
}

func (r SetVideoPathRequest) handle(gs *GlobalState) {
	if gs.Container == nil {
		respond(gs, r.Reply, &videoUnavailableError{})
		return
	}
	containerMeta, packets, errc, err := gs.Container.Open(r.Path)
	if err != nil {
		respond(gs, r.Reply, err)
		return
	}
	drainAndDiscard(packets, errc)
	meta := setting.VideoMeta{
		Path:        r.Path,
		TotalFrames: containerMeta.TotalFrames,
		FrameRate:   containerMeta.FrameRate,
		Height:      containerMeta.Height,
		Width:       containerMeta.Width,
	}
	respond(gs, r.Reply, gs.Setting.SetVideoPath(r.Path, meta))
}

// drainAndDiscard lets the header-only probe opened by
// SetVideoPathRequest close out its packet scan without blocking on a
// consumer; the real scan that feeds Green2 is started fresh by
// ReadVideoMetaTask.
func drainAndDiscard(packets <-chan *videosrc.Packet, errc <-chan error) {
	go func() {
		for range packets {
		}
		<-errc
	}()
}

type videoUnavailableError struct{}

func (e *videoUnavailableError) Error() string { return "no container reader configured" }

type SetDaqPathRequest struct {
	Path  string
	Reply chan<- WriteResult
}

func (r SetDaqPathRequest) handle(gs *GlobalState) {
	table, err := daqsrc.Read(r.Path)
	if err != nil {
		respond(gs, r.Reply, err)
		return
	}
	meta := setting.DaqMeta{Path: r.Path, NRows: table.NRows, NCols: table.NCols}
	respond(gs, r.Reply, gs.Setting.SetDaqPath(r.Path, meta))
}

type SynchronizeVideoAndDaqRequest struct {
	StartFrame int
	StartRow   int
	Reply      chan<- WriteResult
}

func (r SynchronizeVideoAndDaqRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SynchronizeVideoAndDaq(r.StartFrame, r.StartRow))
}

type SetStartFrameRequest struct {
	Frame int
	Reply chan<- WriteResult
}

func (r SetStartFrameRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetStartFrame(r.Frame))
}

type SetStartRowRequest struct {
	Row   int
	Reply chan<- WriteResult
}

func (r SetStartRowRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetStartRow(r.Row))
}

type SetAreaRequest struct {
	Area  setting.Area
	Reply chan<- WriteResult
}

func (r SetAreaRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetArea(r.Area))
}

type SetThermocouplesRequest struct {
	Thermocouples []setting.Thermocouple
	Reply         chan<- WriteResult
}

func (r SetThermocouplesRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetThermocouples(r.Thermocouples))
}

type SetInterpolationMethodRequest struct {
	Method setting.InterpMethod
	Reply  chan<- WriteResult
}

func (r SetInterpolationMethodRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetInterpolationMethod(r.Method))
}

type SetFilterMethodRequest struct {
	Method setting.FilterMethod
	Reply  chan<- WriteResult
}

func (r SetFilterMethodRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetFilterMethod(r.Method))
}

type SetIterationMethodRequest struct {
	Method setting.IterationMethod
	Reply  chan<- WriteResult
}

func (r SetIterationMethodRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetIterationMethod(r.Method))
}

type SetPeakTemperatureRequest struct {
	Value float64
	Reply chan<- WriteResult
}

func (r SetPeakTemperatureRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetPeakTemperature(ambientTemperatureRef, tlcPeakTemperatureRef, r.Value))
}

type SetSolidThermalConductivityRequest struct {
	Value float64
	Reply chan<- WriteResult
}

func (r SetSolidThermalConductivityRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetSolidThermalConductivity(r.Value))
}

type SetSolidThermalDiffusivityRequest struct {
	Value float64
	Reply chan<- WriteResult
}

func (r SetSolidThermalDiffusivityRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetSolidThermalDiffusivity(r.Value))
}

type SetCharacteristicLengthRequest struct {
	Value float64
	Reply chan<- WriteResult
}

func (r SetCharacteristicLengthRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetCharacteristicLength(r.Value))
}

type SetAirThermalConductivityRequest struct {
	Value float64
	Reply chan<- WriteResult
}

func (r SetAirThermalConductivityRequest) handle(gs *GlobalState) {
	respond(gs, r.Reply, gs.Setting.SetAirThermalConductivity(r.Value))
}
