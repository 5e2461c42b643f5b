package videosrc

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/tlc-project/tlc-core/internal/progress"
	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// BuildGreen2 decodes the synchronized window [startFrame, startFrame+
// frameNum) over area into a dense frameNum x (area.height*area.width)
// matrix of green-channel values (§4.4). Decoding is parallel across
// disjoint chunks of the frame range; each chunk owns its own
// row-band of the pre-allocated output so no synchronization is
// needed beyond the initial allocation.
func BuildGreen2(ctx context.Context, meta setting.VideoMeta, packets *PacketList, area setting.Area, startFrame, frameNum, chunkSize int, mon *progress.Monitor) (*mat.Dense, error) {
	if chunkSize < 1 {
		chunkSize = 1
	}
	all, err := packets.All()
	if err != nil {
		return nil, err
	}

	npixels := int(area.Height) * int(area.Width)
	out := mat.NewDense(frameNum, npixels, nil)

	if mon != nil {
		if err := mon.Start(uint32(frameNum)); err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for chunkStart := 0; chunkStart < frameNum; chunkStart += chunkSize {
		chunkStart := chunkStart
		chunkEnd := chunkStart + chunkSize
		if chunkEnd > frameNum {
			chunkEnd = frameNum
		}
		g.Go(func() error {
			for f := chunkStart; f < chunkEnd; f++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				packetIndex := startFrame + f
				if packetIndex >= len(all) {
					return &tlcerrors.DecodeFailedError{Frame: packetIndex, Err: errFrameOutOfRange}
				}
				decoded, err := DecodeGreen(meta, all[packetIndex], area)
				if err != nil {
					return err
				}
				for p := 0; p < npixels; p++ {
					out.Set(f, p, float64(decoded.Green[p]))
				}
				if mon != nil {
					if err := mon.Add(1); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

var errFrameOutOfRange = decodeError("frame index exceeds loaded packet count")
