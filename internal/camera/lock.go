package camera

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gofrs/flock"
)

// Locked guards a Device with a file lock so only one qrscan process owns
// the camera at a time. The lock is released once every track is stopped.
type Locked struct {
	Device Device
	Path   string
}

// Acquire implements Device.
func (l Locked) Acquire(ctx context.Context) (Stream, error) {
	lock := flock.New(l.Path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: camera lock %s: %v", ErrUnavailable, l.Path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: lock %s is held by another process", ErrBusy, l.Path)
	}

	stream, err := l.Device.Acquire(ctx)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	inner := stream.Tracks()
	ls := &lockedStream{Stream: stream}
	ls.remaining.Store(int32(len(inner)))
	unlock := func() { _ = lock.Unlock() }
	if len(inner) == 0 {
		unlock()
	}
	for _, track := range inner {
		ls.tracks = append(ls.tracks, &lockedTrack{Track: track, stream: ls, unlock: unlock})
	}
	return ls, nil
}

type lockedStream struct {
	Stream
	tracks    []Track
	remaining atomic.Int32
}

func (s *lockedStream) Tracks() []Track { return s.tracks }

type lockedTrack struct {
	Track
	stream  *lockedStream
	unlock  func()
	stopped atomic.Bool
}

func (t *lockedTrack) Stop() {
	if !t.stopped.CompareAndSwap(false, true) {
		return
	}
	t.Track.Stop()
	if t.stream.remaining.Add(-1) == 0 {
		t.unlock()
	}
}
