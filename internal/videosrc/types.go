// Package videosrc is the video frame source (§4.3, §4.4): packet
// storage and validation, an LRU packet cache, a smooth-seek ring of
// decoder requests, and the Green2 builder. The on-disk container
// format itself is an external collaborator — packets carry raw,
// already-demuxed pixel rows, and this package owns everything from
// "packet in hand" to "green-channel matrix" or "JPEG thumbnail".
package videosrc

// Packet is one demuxed, still-compressed-enough-to-cache frame unit.
// Pix holds packed RGB rows (row-major, 3 bytes per pixel) for the
// full frame; the container is assumed to hand these over already
// demuxed, so this package never parses a bitstream.
type Packet struct {
	FrameIndex int
	Dts        int64
	Pix        []byte
}
