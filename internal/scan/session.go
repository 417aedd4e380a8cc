package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/five82/qrscan/internal/camera"
	"github.com/five82/qrscan/internal/decode"
	"github.com/five82/qrscan/internal/logging"
	"github.com/five82/qrscan/internal/notify"
)

const (
	defaultFrameInterval = time.Second / 60
	defaultPreviewEvery  = 100 * time.Millisecond
)

// Decoder finds a QR code in a tightly packed RGBA buffer.
type Decoder interface {
	Decode(pix []byte, width, height int) (decode.Match, bool)
}

// Options configure a Session.
type Options struct {
	Device   camera.Device
	Decoder  Decoder
	Notifier notify.Notifier
	Logger   *slog.Logger

	// FrameInterval paces frame steps. Zero means 60 per second.
	FrameInterval time.Duration
	// AcquireTimeout bounds camera acquisition. Zero waits indefinitely.
	AcquireTimeout time.Duration
	// PreviewEvery throttles preview raster copies. Zero means 100ms.
	PreviewEvery time.Duration
}

// Snapshot is a point-in-time copy of Session state.
type Snapshot struct {
	ID        string
	State     State
	Scanning  bool
	Codes     []string
	Err       error
	Frames    uint64
	Width     int
	Height    int
	Points    []image.Point
	Preview   *image.RGBA
	StartedAt time.Time
	EndedAt   time.Time
}

// Session is one mount of the scanner: a camera stream, a frame loop and the
// codes found while it ran. A Session is mounted at most once.
type Session struct {
	id       string
	device   camera.Device
	decoder  Decoder
	notifier notify.Notifier
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
	every    time.Duration

	results Results
	alive   atomic.Bool

	// stepMu serializes frame steps with teardown.
	stepMu    sync.Mutex
	stream    camera.Stream
	raster    *image.RGBA
	previewAt time.Time

	mountOnce   sync.Once
	unmountOnce sync.Once
	cancel      context.CancelFunc
	done        chan struct{}

	mu        sync.RWMutex
	state     State
	scanning  bool
	err       error
	frames    uint64
	width     int
	height    int
	points    []image.Point
	preview   *image.RGBA
	startedAt time.Time
	endedAt   time.Time
}

// NewSession returns an unmounted Session.
func NewSession(opts Options) *Session {
	id := uuid.NewString()
	s := &Session{
		id:       id,
		device:   opts.Device,
		decoder:  opts.Decoder,
		notifier: opts.Notifier,
		interval: opts.FrameInterval,
		timeout:  opts.AcquireTimeout,
		every:    opts.PreviewEvery,
		logger:   logging.NewComponentLogger(opts.Logger, "scan").With(logging.String(logging.FieldSessionID, id)),
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.interval <= 0 {
		s.interval = defaultFrameInterval
	}
	if s.every <= 0 {
		s.every = defaultPreviewEvery
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Results returns the codes found so far.
func (s *Session) Results() *Results { return &s.results }

// Mount requests the camera and starts the frame loop in the background. It
// returns immediately; acquisition failures are reported through Snapshot.
func (s *Session) Mount(ctx context.Context) {
	s.mountOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		s.done = make(chan struct{})
		s.alive.Store(true)

		s.mu.Lock()
		s.startedAt = time.Now()
		s.state = StateAcquiring
		s.mu.Unlock()

		go s.run(ctx)
	})
}

// Unmount stops the loop and releases the camera. Once it returns no frame
// step does any work. It is safe to call more than once.
func (s *Session) Unmount() {
	s.unmountOnce.Do(func() {
		s.mountOnce.Do(func() {})
		s.alive.Store(false)
		if s.cancel != nil {
			s.cancel()
		}

		s.stepMu.Lock()
		stream := s.stream
		s.stream = nil
		s.raster = nil
		s.stepMu.Unlock()
		camera.StopAll(stream)

		if s.done != nil {
			<-s.done
		}

		s.mu.Lock()
		if s.state != StateIdle || s.err == nil {
			s.state = StateStopped
		}
		s.scanning = false
		s.endedAt = time.Now()
		s.mu.Unlock()

		s.logger.Info("scan session ended",
			logging.String(logging.FieldEventType, "session_ended"),
			logging.Int("codes", s.results.Len()),
		)
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	stream, err := s.acquire(ctx)
	if err != nil {
		if !s.alive.Load() {
			return
		}
		s.logger.Warn("camera acquisition failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "camera_denied"),
			logging.String(logging.FieldImpact, "scanning is inactive until toggled again"),
		)
		s.mu.Lock()
		s.state = StateIdle
		s.err = err
		s.mu.Unlock()
		return
	}

	if !s.attach(stream) {
		camera.StopAll(stream)
		return
	}
	s.logger.Info("camera stream attached",
		logging.String(logging.FieldEventType, "camera_attached"),
		logging.Int("tracks", len(stream.Tracks())),
	)
	s.loop(ctx)
}

func (s *Session) acquire(ctx context.Context) (camera.Stream, error) {
	if s.device == nil {
		return nil, fmt.Errorf("%w: no camera configured", camera.ErrUnavailable)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	stream, err := s.device.Acquire(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no stream after %s", camera.ErrUnavailable, s.timeout)
		}
		return nil, err
	}
	return stream, nil
}

// attach installs stream unless the session was unmounted meanwhile.
func (s *Session) attach(stream camera.Stream) bool {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	if !s.alive.Load() {
		return false
	}
	s.stream = stream

	s.mu.Lock()
	s.state = StateStreaming
	s.mu.Unlock()
	return true
}

func (s *Session) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.mu.Lock()
	if s.state == StateStreaming {
		s.state = StateLooping
	}
	s.mu.Unlock()

	for s.alive.Load() {
		s.step()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// step processes the current frame. It is a no-op once the session is
// unmounted.
func (s *Session) step() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	if !s.alive.Load() || s.stream == nil {
		return
	}

	width, height := s.stream.Dimensions()
	if width <= 0 || height <= 0 {
		return
	}
	if s.raster == nil || s.raster.Rect.Dx() != width || s.raster.Rect.Dy() != height {
		s.raster = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	if err := s.stream.Draw(s.raster); err != nil {
		return
	}

	match, ok := s.decoder.Decode(s.raster.Pix, width, height)

	draw.Draw(s.raster, s.raster.Rect, image.Transparent, image.Point{}, draw.Src)
	redrawn := s.stream.Draw(s.raster) == nil

	var preview *image.RGBA
	if now := time.Now(); redrawn && now.Sub(s.previewAt) >= s.every {
		s.previewAt = now
		preview = cloneRGBA(s.raster)
	}

	fresh := ok && s.results.Add(match.Text)

	s.mu.Lock()
	s.frames++
	s.width, s.height = width, height
	s.scanning = ok
	if preview != nil {
		// Points always describe the raster in preview.
		s.preview = preview
		if ok {
			s.points = append(s.points[:0:0], match.Points...)
		} else {
			s.points = nil
		}
	}
	s.mu.Unlock()

	if fresh {
		s.logger.Info("new code detected",
			logging.String(logging.FieldEventType, "code_detected"),
			logging.Int("length", len(match.Text)),
		)
		s.notifier.Notify()
	}
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		Scanning:  s.scanning,
		Codes:     s.results.Snapshot(),
		Err:       s.err,
		Frames:    s.frames,
		Width:     s.width,
		Height:    s.height,
		Preview:   s.preview,
		StartedAt: s.startedAt,
		EndedAt:   s.endedAt,
	}
	if len(s.points) > 0 {
		snap.Points = append([]image.Point(nil), s.points...)
	}
	return snap
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dup := &image.RGBA{
		Pix:    make([]byte, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dup.Pix, src.Pix)
	return dup
}
