// Package decode turns RGBA rasters into QR payloads using the gozxing
// QR reader.
package decode

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Match is a decoded QR code.
type Match struct {
	Text string
	// Points are the finder pattern centres reported by the reader, in
	// raster coordinates.
	Points []image.Point
}

// Decoder wraps a gozxing QR reader. It is not safe for concurrent use.
type Decoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// New returns a Decoder. tryHarder trades speed for accuracy on difficult
// frames.
func New(tryHarder bool) *Decoder {
	d := &Decoder{reader: qrcode.NewQRCodeReader()}
	if tryHarder {
		d.hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}
	return d
}

// Decode inspects a tightly packed RGBA buffer of width*height pixels. The
// second return is false when no code was found or the buffer is malformed.
func (d *Decoder) Decode(pix []byte, width, height int) (Match, bool) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return Match{}, false
	}
	img := &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	match, err := d.DecodeImage(img)
	if err != nil {
		return Match{}, false
	}
	return match, true
}

// ErrNotFound reports an image without a readable QR code.
var ErrNotFound = errors.New("no qr code found")

// DecodeImage decodes any image. A miss returns ErrNotFound.
func (d *Decoder) DecodeImage(img image.Image) (Match, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Match{}, fmt.Errorf("binarize image: %w", err)
	}
	defer d.reader.Reset()

	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil || result == nil {
		// gozxing reports misses, bad checksums and unreadable formats
		// alike; for a frame loop they are all just "nothing here".
		return Match{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	match := Match{Text: result.GetText()}
	for _, p := range result.GetResultPoints() {
		if p == nil {
			continue
		}
		match.Points = append(match.Points, image.Pt(
			int(math.Round(p.GetX())),
			int(math.Round(p.GetY())),
		))
	}
	return match, nil
}
