package notify

import (
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakePlayer struct {
	mu      sync.Mutex
	plays   int
	release chan struct{}
	started chan struct{}
	err     error
}

func (p *fakePlayer) Play(pcm []byte) error {
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	p.plays++
	p.mu.Unlock()
	return p.err
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

type slowPlayer struct {
	delay     time.Duration
	active    atomic.Int32
	maxActive atomic.Int32
}

func (p *slowPlayer) Play([]byte) error {
	n := p.active.Add(1)
	for {
		m := p.maxActive.Load()
		if n <= m || p.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(p.delay)
	p.active.Add(-1)
	return nil
}

func TestBeeper_NotifyPlaysTone(t *testing.T) {
	player := &fakePlayer{}
	b := NewBeeper(player, []byte{1, 2}, nil)
	defer b.Close()

	b.Notify()
	deadline := time.Now().Add(2 * time.Second)
	for player.count() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("plays = %d, want 1", player.count())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBeeper_NotifyNeverBlocks(t *testing.T) {
	player := &fakePlayer{release: make(chan struct{}), started: make(chan struct{}, 16)}
	b := NewBeeper(player, nil, nil)

	b.Notify()
	<-player.started

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Notify()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked while the player was busy")
	}

	if _, pending := b.Stats(); pending != 10 {
		t.Fatalf("pending = %d, want 10", pending)
	}

	close(player.release)
	b.Close()
}

func TestBeeper_EveryRequestIsPlayed(t *testing.T) {
	player := &slowPlayer{delay: 20 * time.Millisecond}
	b := NewBeeper(player, nil, nil)
	defer b.Close()

	// Three new codes on consecutive frames at 60fps.
	for i := 0; i < 3; i++ {
		b.Notify()
		time.Sleep(16 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		played, pending := b.Stats()
		if played == 3 && pending == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("played = %d pending = %d, want 3 and 0", played, pending)
		}
		time.Sleep(time.Millisecond)
	}
	if got := player.maxActive.Load(); got != 1 {
		t.Fatalf("concurrent tones = %d, want 1", got)
	}
}

func TestBeeper_PlaybackErrorsAreNotCounted(t *testing.T) {
	player := &fakePlayer{err: errors.New("no audio device"), started: make(chan struct{}, 1)}
	b := NewBeeper(player, nil, nil)
	b.Notify()
	<-player.started
	b.Close()

	if played, _ := b.Stats(); played != 0 {
		t.Fatalf("played = %d, want 0", played)
	}
}

func TestBeeper_CloseIsIdempotent(t *testing.T) {
	b := NewBeeper(&fakePlayer{}, nil, nil)
	b.Close()
	b.Close()
}

func TestSquareWave(t *testing.T) {
	pcm := SquareWave(1000, 100*time.Millisecond, 8000, 0.5)
	if len(pcm) != 800*2 {
		t.Fatalf("len = %d, want %d", len(pcm), 800*2)
	}

	sample := func(i int) int16 { return int16(binary.LittleEndian.Uint16(pcm[i*2:])) }
	want := int16(16383)
	// 8 samples per period: four high then four low.
	for i := 0; i < 8; i++ {
		got := sample(i)
		expected := want
		if i >= 4 {
			expected = -want
		}
		if got != expected {
			t.Fatalf("sample %d = %d, want %d", i, got, expected)
		}
	}
}

func TestSquareWave_InvalidInputs(t *testing.T) {
	cases := []struct {
		name     string
		freq     float64
		duration time.Duration
		rate     int
	}{
		{"zero frequency", 0, time.Second, 8000},
		{"zero duration", 1000, 0, 8000},
		{"zero rate", 1000, time.Second, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if pcm := SquareWave(tc.freq, tc.duration, tc.rate, 1); pcm != nil {
				t.Fatalf("SquareWave returned %d bytes, want nil", len(pcm))
			}
		})
	}
}

func TestSquareWave_ClampsVolume(t *testing.T) {
	pcm := SquareWave(1000, 10*time.Millisecond, 8000, 4)
	if got := int16(binary.LittleEndian.Uint16(pcm)); got != 32767 {
		t.Fatalf("first sample = %d, want 32767", got)
	}
}
