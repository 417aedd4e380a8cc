// Package camera defines the capture capability the scan loop consumes and
// the frame sources that satisfy it.
//
// A Device hands out a Stream on Acquire. The Stream exposes the native
// resolution of its current frame (zero until the first frame arrives), paints
// that frame onto a caller-owned raster, and lists the Tracks that must be
// stopped to release the hardware.
package camera

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrUnavailable reports a denied or missing capture device.
	ErrUnavailable = errors.New("camera unavailable")
	// ErrBusy reports that another process holds the camera lock.
	ErrBusy = errors.New("camera busy")
	// ErrNoFrame is returned by Draw before the first frame arrives.
	ErrNoFrame = errors.New("no frame available")
)

// Device acquires exclusive capture streams.
type Device interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is a live, exclusively owned capture.
type Stream interface {
	// Dimensions returns the native size of the current frame.
	Dimensions() (width, height int)
	// Draw paints the current frame onto dst, which must match Dimensions.
	Draw(dst *image.RGBA) error
	Tracks() []Track
}

// Track is one stoppable component of a Stream.
type Track interface {
	ID() string
	Kind() string
	Stop()
}

// DeviceFunc adapts a function to the Device interface.
type DeviceFunc func(ctx context.Context) (Stream, error)

func (f DeviceFunc) Acquire(ctx context.Context) (Stream, error) { return f(ctx) }

// StopAll stops every track of s.
func StopAll(s Stream) {
	if s == nil {
		return
	}
	for _, track := range s.Tracks() {
		track.Stop()
	}
}

// Open runs a blocking open call while honoring ctx. When ctx ends first the
// late result is handed to discard so the device is not leaked.
func Open[T any](ctx context.Context, open func() (T, error), discard func(T)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := open()
		done <- result{value, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil && discard != nil {
				discard(r.value)
			}
		}()
		var zero T
		return zero, ctx.Err()
	}
}
