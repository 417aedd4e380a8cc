// Package audio plays PCM through the system sound device using oto.
package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	contextOnce sync.Once
	sharedCtx   *oto.Context
	contextErr  error
)

// Player plays signed 16-bit little-endian mono PCM.
type Player struct {
	ctx *oto.Context
}

// Open prepares the process-wide audio context. oto allows only one context
// per process, so the sample rate of the first call wins.
func Open(sampleRate int) (*Player, error) {
	contextOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			contextErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		sharedCtx = ctx
	})
	if contextErr != nil {
		return nil, contextErr
	}
	return &Player{ctx: sharedCtx}, nil
}

// Play blocks until pcm has been played.
func (p *Player) Play(pcm []byte) error {
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(5 * time.Millisecond)
	}
	if err := player.Close(); err != nil {
		return fmt.Errorf("close audio player: %w", err)
	}
	return nil
}
