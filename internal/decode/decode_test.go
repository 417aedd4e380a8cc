package decode

import (
	"errors"
	"image"
	"image/draw"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

func encodeQR(t *testing.T, text string, size int) *image.RGBA {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		t.Fatalf("encode %q: %v", text, err)
	}
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, out.Bounds(), matrix, image.Point{}, draw.Src)
	return out
}

func TestDecode_FindsPayloadAndPoints(t *testing.T) {
	img := encodeQR(t, "hello", 250)

	match, ok := New(false).Decode(img.Pix, 250, 250)
	if !ok {
		t.Fatalf("Decode returned no match")
	}
	if match.Text != "hello" {
		t.Fatalf("Text = %q, want %q", match.Text, "hello")
	}
	if len(match.Points) < 3 {
		t.Fatalf("Points = %v, want at least 3 finder points", match.Points)
	}
	for _, p := range match.Points {
		if !p.In(img.Rect) {
			t.Fatalf("point %v outside raster %v", p, img.Rect)
		}
	}
}

func TestDecode_BlankFrameIsMiss(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	if _, ok := New(true).Decode(img.Pix, 64, 64); ok {
		t.Fatalf("Decode matched a blank frame")
	}
	if _, err := New(false).DecodeImage(img); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DecodeImage error = %v, want ErrNotFound", err)
	}
}

func TestDecode_RejectsMalformedBuffers(t *testing.T) {
	cases := []struct {
		name          string
		pix           []byte
		width, height int
	}{
		{"zero width", make([]byte, 16), 0, 4},
		{"zero height", make([]byte, 16), 4, 0},
		{"short buffer", make([]byte, 15), 2, 2},
		{"long buffer", make([]byte, 17), 2, 2},
	}
	d := New(false)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := d.Decode(tc.pix, tc.width, tc.height); ok {
				t.Fatalf("Decode matched a malformed buffer")
			}
		})
	}
}

func TestDecode_ReusableAcrossFrames(t *testing.T) {
	d := New(false)
	for _, text := range []string{"first", "second", "first"} {
		img := encodeQR(t, text, 200)
		match, ok := d.Decode(img.Pix, 200, 200)
		if !ok || match.Text != text {
			t.Fatalf("Decode = %q,%v, want %q", match.Text, ok, text)
		}
	}
}
