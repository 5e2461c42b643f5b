package videosrc

import (
	"sync"

	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// PacketList accumulates packets read from the container in order. It
// is append-only and safe for concurrent readers while one forward
// scan goroutine appends.
type PacketList struct {
	mu      sync.RWMutex
	meta    setting.VideoMeta
	packets []*Packet
}

// NewPacketList creates an empty list sized for meta.TotalFrames.
func NewPacketList(meta setting.VideoMeta) *PacketList {
	return &PacketList{
		meta:    meta,
		packets: make([]*Packet, 0, meta.TotalFrames),
	}
}

// Push appends a newly read packet. Per §12 item 3, the packet's
// decode timestamp must equal the list's current length — packets
// must arrive strictly in frame order, since every later stage
// assumes packet index == frame index.
func (pl *PacketList) Push(p *Packet) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if p.Dts != int64(len(pl.packets)) {
		return &tlcerrors.DecodeFailedError{
			Frame: int(p.Dts),
			Err:   errWrongPacket,
		}
	}
	pl.packets = append(pl.packets, p)
	return nil
}

var errWrongPacket = wrongPacketError{}

type wrongPacketError struct{}

func (wrongPacketError) Error() string { return "wrong packet" }

// Len returns the number of packets currently loaded.
func (pl *PacketList) Len() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return len(pl.packets)
}

// Packet returns the packet at frameIndex, or a precondition error if
// it hasn't been read yet.
func (pl *PacketList) Packet(frameIndex int) (*Packet, error) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	if frameIndex < 0 || frameIndex >= len(pl.packets) {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "packet not loaded yet"}
	}
	return pl.packets[frameIndex], nil
}

// All returns every packet, or a precondition error if the forward
// scan hasn't finished (§12 item 4): any stage reading the full list
// must see it fully populated before proceeding.
func (pl *PacketList) All() ([]*Packet, error) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	if len(pl.packets) < pl.meta.TotalFrames {
		return nil, &tlcerrors.PreconditionUnsatisfiedError{Reason: "loading packets not finished yet"}
	}
	out := make([]*Packet, len(pl.packets))
	copy(out, pl.packets)
	return out, nil
}
