package camera

import (
	"image"
	"image/draw"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/five82/qrscan/internal/logging"
)

const grabRetryDelay = 50 * time.Millisecond

// GrabFunc returns the next frame. A nil image with a nil error means the
// source has nothing new yet.
type GrabFunc func() (*image.RGBA, error)

// Feed is a Stream backed by a capture goroutine that keeps the freshest
// frame. Frames handed to the feed must not be modified afterwards.
type Feed struct {
	latest atomic.Pointer[image.RGBA]
	track  *feedTrack
	logger *slog.Logger

	grabs  atomic.Uint64
	misses atomic.Uint64
}

type feedTrack struct {
	id      string
	kind    string
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	release func()
}

// StartFeed launches the capture goroutine. interval paces grabs; zero lets
// the grab call itself block until a frame is ready. release runs once after
// the goroutine exits.
func StartFeed(kind string, grab GrabFunc, interval time.Duration, logger *slog.Logger, release func()) *Feed {
	f := &Feed{
		track: &feedTrack{
			id:      uuid.NewString(),
			kind:    kind,
			quit:    make(chan struct{}),
			done:    make(chan struct{}),
			release: release,
		},
		logger: logging.NewComponentLogger(logger, "camera"),
	}
	go f.loop(grab, interval)
	return f
}

func (f *Feed) loop(grab GrabFunc, interval time.Duration) {
	defer close(f.track.done)

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-f.track.quit:
			return
		default:
		}

		img, err := grab()
		switch {
		case err != nil:
			if f.misses.Add(1) == 1 {
				f.logger.Warn("frame grab failed", logging.Error(err))
			}
			if !f.sleep(grabRetryDelay) {
				return
			}
			continue
		case img != nil:
			f.grabs.Add(1)
			f.latest.Store(img)
		}

		if tick != nil {
			select {
			case <-f.track.quit:
				return
			case <-tick:
			}
		}
	}
}

func (f *Feed) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.track.quit:
		return false
	case <-timer.C:
		return true
	}
}

// Dimensions implements Stream.
func (f *Feed) Dimensions() (int, int) {
	img := f.latest.Load()
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// Draw implements Stream.
func (f *Feed) Draw(dst *image.RGBA) error {
	img := f.latest.Load()
	if img == nil {
		return ErrNoFrame
	}
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return nil
}

// Tracks implements Stream.
func (f *Feed) Tracks() []Track { return []Track{f.track} }

// Grabs returns how many frames the feed has captured.
func (f *Feed) Grabs() uint64 { return f.grabs.Load() }

func (t *feedTrack) ID() string   { return t.id }
func (t *feedTrack) Kind() string { return t.kind }

// Stop ends capture and releases the device. It blocks until the capture
// goroutine has exited and is safe to call more than once.
func (t *feedTrack) Stop() {
	t.once.Do(func() {
		close(t.quit)
		<-t.done
		if t.release != nil {
			t.release()
		}
	})
}

// ToRGBA converts img to a tightly packed RGBA image anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
