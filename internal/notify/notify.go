// Package notify plays the audible cue for newly detected codes.
//
// Notify never blocks the caller. Requests are counted and a single player
// goroutine plays one tone per request, in order.
package notify

import (
	"encoding/binary"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/qrscan/internal/logging"
)

// SampleRate is the PCM rate the beeper synthesizes at.
const SampleRate = 44100

// Notifier receives "new code" events.
type Notifier interface {
	Notify()
}

// Func adapts a function to Notifier.
type Func func()

func (f Func) Notify() { f() }

// Nop is a Notifier that does nothing.
type Nop struct{}

func (Nop) Notify() {}

// Player plays signed 16-bit little-endian mono PCM, blocking until done.
type Player interface {
	Play(pcm []byte) error
}

// Beeper plays a fixed tone on a background goroutine.
type Beeper struct {
	player  Player
	pcm     []byte
	logger  *slog.Logger
	pending atomic.Int32
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once

	mu     sync.Mutex
	played int
}

// NewBeeper starts the player goroutine. Call Close to stop it.
func NewBeeper(player Player, pcm []byte, logger *slog.Logger) *Beeper {
	b := &Beeper{
		player: player,
		pcm:    pcm,
		logger: logging.NewComponentLogger(logger, "notify"),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

// Notify queues one beep. Every request is played, one after another.
func (b *Beeper) Notify() {
	b.pending.Add(1)
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Close stops the player goroutine after the current tone finishes. Queued
// tones that have not started are abandoned.
func (b *Beeper) Close() {
	b.once.Do(func() {
		close(b.quit)
		<-b.done
	})
}

// Stats returns how many beeps were played and how many are still queued.
func (b *Beeper) Stats() (played, pending int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.played, int(b.pending.Load())
}

func (b *Beeper) run() {
	defer close(b.done)
	warned := false
	for {
		select {
		case <-b.quit:
			return
		case <-b.wake:
		}
		for b.pending.Load() > 0 {
			select {
			case <-b.quit:
				return
			default:
			}
			b.pending.Add(-1)
			if err := b.player.Play(b.pcm); err != nil {
				if !warned {
					b.logger.Warn("beep playback failed",
						logging.Error(err),
						logging.String(logging.FieldEventType, "beep_failed"),
						logging.String(logging.FieldImpact, "new codes are not announced audibly"),
					)
					warned = true
				}
				continue
			}
			b.mu.Lock()
			b.played++
			b.mu.Unlock()
		}
	}
}

// SquareWave synthesizes a mono square wave as signed 16-bit little-endian
// PCM. volume is clamped to [0,1].
func SquareWave(frequency float64, duration time.Duration, sampleRate int, volume float64) []byte {
	if frequency <= 0 || duration <= 0 || sampleRate <= 0 {
		return nil
	}
	volume = math.Max(0, math.Min(1, volume))
	amplitude := int16(volume * math.MaxInt16)

	samples := int(duration.Seconds() * float64(sampleRate))
	pcm := make([]byte, samples*2)
	period := float64(sampleRate) / frequency
	for i := 0; i < samples; i++ {
		v := amplitude
		if math.Mod(float64(i), period) >= period/2 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}
