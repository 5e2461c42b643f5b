package videosrc

// ContainerReader opens an on-disk video file and demuxes it into a
// stream of already-decoded-to-raw-RGB Packets. Parsing the container
// format itself (its box/chunk layout, codec bitstream) is treated as
// an external collaborator: everything in this package operates once a
// Packet already exists. A deployment wires a concrete ContainerReader
// appropriate to whatever container format its videos use; tests use a
// fake that satisfies this interface directly.
type ContainerReader interface {
	// Open starts demuxing path and returns its metadata as soon as it
	// is known (typically after reading just the container header).
	// Packets are delivered on the returned channel in ascending Dts
	// order as they are produced; the channel is closed when the scan
	// ends, whether it ran to completion or failed partway through. A
	// non-nil error sent on errc, if any, is sent before packets is
	// closed and reflects why the scan stopped early.
	Open(path string) (meta ContainerMeta, packets <-chan *Packet, errc <-chan error, err error)
}

// ContainerMeta is the subset of setting.VideoMeta a ContainerReader
// can determine from a container's header alone, before any frame has
// been decoded.
type ContainerMeta struct {
	Height      uint32
	Width       uint32
	FrameRate   int
	TotalFrames int
}
