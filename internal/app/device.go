package app

import (
	"fmt"
	"log/slog"

	"github.com/five82/qrscan/internal/camera"
	"github.com/five82/qrscan/internal/camera/webcam"
	"github.com/five82/qrscan/internal/config"
)

// NewDevice builds the configured frame source behind the cross-process
// camera lock.
func NewDevice(cfg config.Config, logger *slog.Logger) (camera.Device, error) {
	var device camera.Device
	switch cfg.Camera.Source {
	case config.SourceWebcam, "":
		device = webcam.Device{Index: cfg.Camera.Device, Logger: logger}
	case config.SourceScreen:
		device = camera.Screen{Logger: logger}
	case config.SourceReplay:
		device = camera.Replay{Dir: cfg.Camera.ReplayDir, Logger: logger}
	default:
		return nil, fmt.Errorf("camera source %q is not supported", cfg.Camera.Source)
	}
	return camera.Locked{Device: device, Path: cfg.LockPath()}, nil
}
