package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/qrscan/internal/audio"
	"github.com/five82/qrscan/internal/clip"
	"github.com/five82/qrscan/internal/config"
	"github.com/five82/qrscan/internal/decode"
	"github.com/five82/qrscan/internal/history"
	"github.com/five82/qrscan/internal/hotplug"
	"github.com/five82/qrscan/internal/logging"
	"github.com/five82/qrscan/internal/notify"
	"github.com/five82/qrscan/internal/prefs"
	"github.com/five82/qrscan/internal/scan"
	"github.com/five82/qrscan/internal/ui"
)

// Options configure the qrscan application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/qrscan/prefs.toml
}

// Run boots the qrscan TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	device, err := NewDevice(cfg, logger)
	if err != nil {
		return err
	}

	notifier, closeNotifier := newNotifier(cfg, logger)
	defer closeNotifier()

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
	}

	controller := scan.NewController(ctx, func() *scan.Session {
		return scan.NewSession(scan.Options{
			Device:         device,
			Decoder:        decode.New(cfg.Decoder.TryHarder),
			Notifier:       notifier,
			Logger:         logger,
			FrameInterval:  cfg.FrameInterval(),
			AcquireTimeout: cfg.Camera.AcquireTimeout,
		})
	})
	defer controller.Close()
	if store != nil {
		controller.OnUnmount(recordSession(store, logger))
	}

	monitor := hotplug.NewMonitor(logger, func(ev hotplug.Event) {
		logger.Info("camera hotplug",
			logging.String(logging.FieldEventType, "camera_"+ev.Action),
			logging.String("device", ev.Device),
		)
	})
	if err := monitor.Start(ctx); err != nil {
		logger.Warn("camera hotplug monitor unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "camera connect and disconnect notices are not shown"),
		)
	}
	defer monitor.Stop()

	logger.Info("qrscan starting",
		logging.String("source", cfg.Camera.Source),
		logging.Int("fps", cfg.Camera.FPS),
		logging.Bool("beep", cfg.Beep.Enabled),
		logging.Bool("history", cfg.History.Enabled),
	)

	return ui.Run(ui.Options{
		Context:   ctx,
		Scanner:   controller,
		Clipboard: clip.System{},
		ThemeName: userPrefs.Theme,
		Preview:   userPrefs.Preview,
		PrefsPath: prefsPath,
		LogPath:   cfg.LogPath(),
		Hotplug:   monitor.Latest,
		Logger:    logger,
	})
}

// newNotifier returns the new-code beeper, or a silent notifier when beeping
// is disabled or no audio device can be opened.
func newNotifier(cfg config.Config, logger *slog.Logger) (notify.Notifier, func()) {
	if !cfg.Beep.Enabled {
		return notify.Nop{}, func() {}
	}
	player, err := audio.Open(notify.SampleRate)
	if err != nil {
		logger.Warn("audio output unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "new codes are detected silently"),
			logging.String(logging.FieldErrorHint, "check the sound server or set beep.enabled = false"),
		)
		return notify.Nop{}, func() {}
	}
	pcm := notify.SquareWave(cfg.Beep.FrequencyHz, cfg.Beep.Duration, notify.SampleRate, cfg.Beep.Volume)
	beeper := notify.NewBeeper(player, pcm, logger)
	return beeper, beeper.Close
}

// recordSession returns an unmount hook that stores sessions with codes.
func recordSession(store *history.Store, logger *slog.Logger) func(*scan.Session) {
	logger = logging.NewComponentLogger(logger, "history")
	return func(session *scan.Session) {
		snap := session.Snapshot()
		err := store.Record(context.Background(), history.Session{
			ID:        snap.ID,
			StartedAt: snap.StartedAt,
			EndedAt:   snap.EndedAt,
			Codes:     snap.Codes,
		})
		switch {
		case errors.Is(err, history.ErrEmptySession):
			return
		case err != nil:
			logger.Warn("record session failed",
				logging.String(logging.FieldSessionID, snap.ID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "session is missing from qrscan history"),
			)
		default:
			logger.Info("session recorded",
				logging.String(logging.FieldSessionID, snap.ID),
				logging.Int("codes", len(snap.Codes)),
			)
		}
	}
}
