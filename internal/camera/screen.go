package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/vova616/screenshot"
)

const defaultScreenInterval = 100 * time.Millisecond

// Screen is a Device that captures the primary display, which is handy for
// scanning codes shown in other windows.
type Screen struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Acquire implements Device.
func (s Screen) Acquire(ctx context.Context) (Stream, error) {
	rect, err := Open(ctx, screenshot.ScreenRect, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: screen capture: %v", ErrUnavailable, err)
	}
	if rect.Empty() {
		return nil, fmt.Errorf("%w: screen capture reported an empty display", ErrUnavailable)
	}

	interval := s.Interval
	if interval <= 0 {
		interval = defaultScreenInterval
	}
	grab := func() (*image.RGBA, error) {
		img, err := screenshot.CaptureScreen()
		if err != nil {
			return nil, err
		}
		return ToRGBA(img), nil
	}
	return StartFeed("screen", grab, interval, s.Logger, nil), nil
}
