// Package webcam provides the OpenCV-backed camera device. It lives apart
// from package camera so the rest of the tree builds without OpenCV.
package webcam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/five82/qrscan/internal/camera"
)

var errReadFailed = errors.New("webcam read failed")

// Device captures video from an OpenCV capture index (0 is the default camera).
type Device struct {
	Index  int
	Logger *slog.Logger
}

// Acquire implements camera.Device.
func (d Device) Acquire(ctx context.Context) (camera.Stream, error) {
	capture, err := camera.Open(ctx,
		func() (*gocv.VideoCapture, error) { return gocv.OpenVideoCapture(d.Index) },
		func(c *gocv.VideoCapture) { _ = c.Close() },
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("open webcam %d: %w", d.Index, ctxErr)
		}
		return nil, fmt.Errorf("%w: open webcam %d: %v", camera.ErrUnavailable, d.Index, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		return nil, fmt.Errorf("%w: webcam %d did not open", camera.ErrUnavailable, d.Index)
	}

	frame := gocv.NewMat()
	rgba := gocv.NewMat()
	grab := func() (*image.RGBA, error) {
		if ok := capture.Read(&frame); !ok {
			return nil, errReadFailed
		}
		if frame.Empty() {
			return nil, nil
		}
		gocv.CvtColor(frame, &rgba, gocv.ColorBGRToRGBA)
		img := image.NewRGBA(image.Rect(0, 0, rgba.Cols(), rgba.Rows()))
		copy(img.Pix, rgba.ToBytes())
		return img, nil
	}
	release := func() {
		_ = frame.Close()
		_ = rgba.Close()
		_ = capture.Close()
	}
	return camera.StartFeed("video", grab, 0, d.Logger, release), nil
}
