package camera

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
)

const defaultReplayHold = 500 * time.Millisecond

var replayExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// Replay is a Device that cycles through the still images in Dir, holding
// each one for Hold before advancing.
type Replay struct {
	Dir    string
	Hold   time.Duration
	Logger *slog.Logger
}

// Acquire implements Device.
func (r Replay) Acquire(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paths, err := ReplayFiles(r.Dir)
	if err != nil {
		return nil, err
	}

	frames := make([]*image.RGBA, 0, len(paths))
	for _, path := range paths {
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("%w: load replay frame %s: %v", ErrUnavailable, filepath.Base(path), err)
		}
		frames = append(frames, ToRGBA(img))
	}

	hold := r.Hold
	if hold <= 0 {
		hold = defaultReplayHold
	}

	var next atomic.Uint64
	grab := func() (*image.RGBA, error) {
		i := next.Add(1) - 1
		return frames[i%uint64(len(frames))], nil
	}
	return StartFeed("replay", grab, hold, r.Logger, nil), nil
}

// ReplayFiles lists the image files in dir in lexical order.
func ReplayFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read replay dir: %v", ErrUnavailable, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := replayExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrUnavailable, dir)
	}
	sort.Strings(paths)
	return paths, nil
}
