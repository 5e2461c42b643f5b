package videosrc

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// DecoderPool runs a fixed number of workers draining a SeekRing,
// decoding whichever packet the ring currently holds against the
// full frame area, and posting JPEG thumbnails back on each request's
// reply channel.
type DecoderPool struct {
	meta    setting.VideoMeta
	ring    *SeekRing
	cache   *PacketCache
	packets *PacketList
	quality int
	sem     *semaphore.Weighted
	done    chan struct{}
}

// NewDecoderPool creates a pool of the given width. quality is the
// JPEG encode quality used for thumbnails.
func NewDecoderPool(meta setting.VideoMeta, ring *SeekRing, cache *PacketCache, packets *PacketList, workers, quality int) *DecoderPool {
	if workers < 1 {
		workers = 1
	}
	return &DecoderPool{
		meta:    meta,
		ring:    ring,
		cache:   cache,
		packets: packets,
		quality: quality,
		sem:     semaphore.NewWeighted(int64(workers)),
		done:    make(chan struct{}),
	}
}

// Run starts the worker loop; it blocks until ctx is canceled or Stop
// is called.
func (p *DecoderPool) Run(ctx context.Context) {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-p.done:
		}
		close(stop)
	}()
	for {
		req, ok := p.ring.Pop(stop)
		if !ok {
			return
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			close(req.reply)
			return
		}
		go func() {
			defer p.sem.Release(1)
			p.serve(req)
		}()
	}
}

// Stop signals Run to return once any in-flight acquire completes.
func (p *DecoderPool) Stop() {
	close(p.done)
}

func (p *DecoderPool) serve(req *seekRequest) {
	packet, err := p.lookupPacket(req.frameIndex)
	if err != nil {
		req.reply <- seekResult{err: err}
		return
	}
	jpegBytes, err := Thumbnail(p.meta, packet, p.quality)
	if err != nil {
		req.reply <- seekResult{err: err}
		return
	}
	req.reply <- seekResult{jpegBytes: jpegBytes}
}

func (p *DecoderPool) lookupPacket(frameIndex int) (*Packet, error) {
	if packet, ok := p.cache.Get(frameIndex); ok {
		return packet, nil
	}
	packet, err := p.packets.Packet(frameIndex)
	if err != nil {
		return nil, err
	}
	p.cache.Put(packet)
	return packet, nil
}

// GetFrame enqueues a seek request and blocks for its JPEG thumbnail,
// or returns an error if the request was evicted (canceled) before a
// worker served it. A frame already in the packet cache is encoded
// inline without going through the ring.
func (p *DecoderPool) GetFrame(ctx context.Context, frameIndex int) ([]byte, error) {
	if packet, ok := p.cache.Get(frameIndex); ok {
		return Thumbnail(p.meta, packet, p.quality)
	}

	reply := p.ring.Push(frameIndex)
	select {
	case res, ok := <-reply:
		if !ok {
			return nil, &tlcerrors.CanceledError{}
		}
		return res.jpegBytes, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
