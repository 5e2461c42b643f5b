package videosrc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/tlc-project/tlc-core/internal/setting"
	"github.com/tlc-project/tlc-core/internal/tlcerrors"
)

// DecodedFrame is a packet decoded against a specific region of
// interest: the green channel of every pixel in the area, row-major.
type DecodedFrame struct {
	FrameIndex int
	Height     uint32
	Width      uint32
	Green      []byte
}

// DecodeGreen extracts the green channel of every pixel within area
// from a packed-RGB packet. The packet is assumed to already be a
// demuxed, uncompressed frame buffer (§4.3's doc comment) sized
// meta.Height*meta.Width*3 bytes.
func DecodeGreen(meta setting.VideoMeta, p *Packet, area setting.Area) (*DecodedFrame, error) {
	want := int(meta.Height) * int(meta.Width) * 3
	if len(p.Pix) != want {
		return nil, &tlcerrors.DecodeFailedError{
			Frame: p.FrameIndex,
			Err:   errShortPacket,
		}
	}
	if area.Top+area.Height > meta.Height || area.Left+area.Width > meta.Width {
		return nil, &tlcerrors.DecodeFailedError{Frame: p.FrameIndex, Err: errAreaOutOfBounds}
	}

	green := make([]byte, area.Height*area.Width)
	stride := int(meta.Width) * 3
	out := 0
	for row := area.Top; row < area.Top+area.Height; row++ {
		rowStart := int(row)*stride + int(area.Left)*3
		for col := uint32(0); col < area.Width; col++ {
			green[out] = p.Pix[rowStart+int(col)*3+1]
			out++
		}
	}
	return &DecodedFrame{FrameIndex: p.FrameIndex, Height: area.Height, Width: area.Width, Green: green}, nil
}

// Thumbnail renders the full frame (not just area) as a JPEG at the
// given quality, for the get_frame(i) read query (§4.3).
func Thumbnail(meta setting.VideoMeta, p *Packet, quality int) ([]byte, error) {
	want := int(meta.Height) * int(meta.Width) * 3
	if len(p.Pix) != want {
		return nil, &tlcerrors.DecodeFailedError{Frame: p.FrameIndex, Err: errShortPacket}
	}

	img := image.NewRGBA(image.Rect(0, 0, int(meta.Width), int(meta.Height)))
	stride := int(meta.Width) * 3
	for y := 0; y < int(meta.Height); y++ {
		rowStart := y * stride
		for x := 0; x < int(meta.Width); x++ {
			o := rowStart + x*3
			img.Set(x, y, color.RGBA{R: p.Pix[o], G: p.Pix[o+1], B: p.Pix[o+2], A: 0xff})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, &tlcerrors.DecodeFailedError{Frame: p.FrameIndex, Err: err}
	}
	return buf.Bytes(), nil
}

var (
	errShortPacket     = decodeError("packet shorter than frame dimensions imply")
	errAreaOutOfBounds = decodeError("area exceeds frame dimensions")
)

type decodeError string

func (e decodeError) Error() string { return string(e) }
