package app

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/qrscan/internal/camera"
	"github.com/five82/qrscan/internal/config"
	"github.com/five82/qrscan/internal/decode"
	"github.com/five82/qrscan/internal/history"
	"github.com/five82/qrscan/internal/logging"
	"github.com/five82/qrscan/internal/notify"
	"github.com/five82/qrscan/internal/scan"
)

type alwaysMatch string

func (a alwaysMatch) Decode([]byte, int, int) (decode.Match, bool) {
	return decode.Match{Text: string(a)}, true
}

func feedDevice() camera.Device {
	return camera.DeviceFunc(func(context.Context) (camera.Stream, error) {
		grab := func() (*image.RGBA, error) {
			return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
		}
		return camera.StartFeed("video", grab, 2*time.Millisecond, nil, nil), nil
	})
}

func openHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newController(device camera.Device, store *history.Store) *scan.Controller {
	c := scan.NewController(context.Background(), func() *scan.Session {
		return scan.NewSession(scan.Options{
			Device:        device,
			Decoder:       alwaysMatch("hello"),
			Notifier:      notify.Nop{},
			FrameInterval: time.Millisecond,
		})
	})
	c.OnUnmount(recordSession(store, logging.NewNop()))
	return c
}

func TestRecordSession_StoresSessionsWithCodes(t *testing.T) {
	store := openHistory(t)
	c := newController(feedDevice(), store)

	c.Toggle()
	deadline := time.Now().Add(2 * time.Second)
	for len(c.Snapshot().Session.Codes) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no code detected before deadline")
		}
		time.Sleep(time.Millisecond)
	}
	liveID := c.Snapshot().Session.ID
	c.Toggle()

	sessions, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("recorded %d sessions, want 1", len(sessions))
	}
	got := sessions[0]
	if got.ID != liveID {
		t.Fatalf("recorded ID = %q, want %q", got.ID, liveID)
	}
	if len(got.Codes) != 1 || got.Codes[0] != "hello" {
		t.Fatalf("recorded codes = %v, want [hello]", got.Codes)
	}
}

func TestRecordSession_SkipsDeniedSessions(t *testing.T) {
	store := openHistory(t)
	denied := camera.DeviceFunc(func(context.Context) (camera.Stream, error) {
		return nil, errors.New("permission denied")
	})
	c := newController(denied, store)

	c.Toggle()
	c.Toggle()

	sessions, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("recorded %d sessions, want 0", len(sessions))
	}
}

func TestNewNotifier_DisabledBeepIsSilent(t *testing.T) {
	cfg := config.Default()
	cfg.Beep.Enabled = false

	n, closeFn := newNotifier(cfg, logging.NewNop())
	defer closeFn()
	if _, ok := n.(notify.Nop); !ok {
		t.Fatalf("newNotifier = %T, want notify.Nop", n)
	}
}
