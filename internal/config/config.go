package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Camera sources understood by camera.NewDevice.
const (
	SourceWebcam = "webcam"
	SourceScreen = "screen"
	SourceReplay = "replay"
)

// Config captures every tunable qrscan reads at startup.
type Config struct {
	StateDir  string
	LogLevel  string
	LogFormat string

	Camera  Camera
	Beep    Beep
	Decoder Decoder
	History History
}

// Camera selects and paces the frame source.
type Camera struct {
	Source         string
	Device         int
	ReplayDir      string
	FPS            int
	AcquireTimeout time.Duration
}

// Beep configures the new-code tone.
type Beep struct {
	Enabled     bool
	FrequencyHz float64
	Duration    time.Duration
	Volume      float64
}

// Decoder configures the QR decoder.
type Decoder struct {
	TryHarder bool
}

// History configures the optional scan history database.
type History struct {
	Enabled bool
	Path    string
}

const (
	defaultConfigPath     = "~/.config/qrscan/config.toml"
	defaultStateDir       = "~/.local/state/qrscan"
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
	defaultFPS            = 60
	maxFPS                = 240
	defaultAcquireTimeout = 15 * time.Second
	defaultBeepFrequency  = 1000
	defaultBeepDuration   = 100 * time.Millisecond
	defaultBeepVolume     = 0.25
)

// fileConfig mirrors the on-disk TOML layout.
type fileConfig struct {
	StateDir  string `toml:"state_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	Camera struct {
		Source         string `toml:"source"`
		Device         int    `toml:"device"`
		ReplayDir      string `toml:"replay_dir"`
		FPS            int    `toml:"fps"`
		AcquireTimeout int    `toml:"acquire_timeout"` // seconds; negative disables
	} `toml:"camera"`

	Beep struct {
		Enabled     *bool   `toml:"enabled"`
		FrequencyHz float64 `toml:"frequency_hz"`
		DurationMS  int     `toml:"duration_ms"`
		Volume      float64 `toml:"volume"`
	} `toml:"beep"`

	Decoder struct {
		TryHarder bool `toml:"try_harder"`
	} `toml:"decoder"`

	History struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"history"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		StateDir:  mustExpand(defaultStateDir),
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		Camera: Camera{
			Source:         SourceWebcam,
			FPS:            defaultFPS,
			AcquireTimeout: defaultAcquireTimeout,
		},
		Beep: Beep{
			Enabled:     true,
			FrequencyHz: defaultBeepFrequency,
			Duration:    defaultBeepDuration,
			Volume:      defaultBeepVolume,
		},
	}
}

// Load locates and parses the qrscan config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return raw.normalize()
}

func (raw fileConfig) normalize() (Config, error) {
	cfg := Default()

	if dir := strings.TrimSpace(raw.StateDir); dir != "" {
		cfg.StateDir = mustExpand(dir)
	}
	if level := strings.ToLower(strings.TrimSpace(raw.LogLevel)); level != "" {
		cfg.LogLevel = level
	}
	if format := strings.ToLower(strings.TrimSpace(raw.LogFormat)); format != "" {
		if format != "json" && format != "console" {
			return Config{}, fmt.Errorf("log_format: unsupported value %q", raw.LogFormat)
		}
		cfg.LogFormat = format
	}

	if source := strings.ToLower(strings.TrimSpace(raw.Camera.Source)); source != "" {
		switch source {
		case SourceWebcam, SourceScreen, SourceReplay:
			cfg.Camera.Source = source
		default:
			return Config{}, fmt.Errorf("camera.source: unsupported value %q", raw.Camera.Source)
		}
	}
	if raw.Camera.Device > 0 {
		cfg.Camera.Device = raw.Camera.Device
	}
	if dir := strings.TrimSpace(raw.Camera.ReplayDir); dir != "" {
		cfg.Camera.ReplayDir = mustExpand(dir)
	}
	if cfg.Camera.Source == SourceReplay && cfg.Camera.ReplayDir == "" {
		return Config{}, fmt.Errorf("camera.replay_dir is required for the replay source")
	}
	if fps := raw.Camera.FPS; fps > 0 {
		if fps > maxFPS {
			fps = maxFPS
		}
		cfg.Camera.FPS = fps
	}
	switch timeout := raw.Camera.AcquireTimeout; {
	case timeout < 0:
		cfg.Camera.AcquireTimeout = 0
	case timeout > 0:
		cfg.Camera.AcquireTimeout = time.Duration(timeout) * time.Second
	}

	if raw.Beep.Enabled != nil {
		cfg.Beep.Enabled = *raw.Beep.Enabled
	}
	if raw.Beep.FrequencyHz > 0 {
		cfg.Beep.FrequencyHz = raw.Beep.FrequencyHz
	}
	if raw.Beep.DurationMS > 0 {
		cfg.Beep.Duration = time.Duration(raw.Beep.DurationMS) * time.Millisecond
	}
	if raw.Beep.Volume > 0 && raw.Beep.Volume <= 1 {
		cfg.Beep.Volume = raw.Beep.Volume
	}

	cfg.Decoder.TryHarder = raw.Decoder.TryHarder

	cfg.History.Enabled = raw.History.Enabled
	if path := strings.TrimSpace(raw.History.Path); path != "" {
		cfg.History.Path = mustExpand(path)
	}

	return cfg, nil
}

// FrameInterval returns the delay between frame steps.
func (c Config) FrameInterval() time.Duration {
	fps := c.Camera.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	return time.Second / time.Duration(fps)
}

// LogPath returns the path to the qrscan log file.
func (c Config) LogPath() string {
	return filepath.Join(c.stateDir(), "qrscan.log")
}

// LockPath returns the path of the camera ownership lock.
func (c Config) LockPath() string {
	return filepath.Join(c.stateDir(), "camera.lock")
}

// HistoryPath returns the scan history database path.
func (c Config) HistoryPath() string {
	if strings.TrimSpace(c.History.Path) != "" {
		return c.History.Path
	}
	return filepath.Join(c.stateDir(), "history.db")
}

// EnsureDirectories creates the state directory.
func (c Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.stateDir(), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	return nil
}

func (c Config) stateDir() string {
	if strings.TrimSpace(c.StateDir) == "" {
		return mustExpand(defaultStateDir)
	}
	return c.StateDir
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
