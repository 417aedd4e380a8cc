//go:build !linux

package hotplug

import (
	"context"
	"log/slog"
)

// Monitor is inert on platforms without udev.
type Monitor struct{}

func NewMonitor(*slog.Logger, func(Event)) *Monitor { return &Monitor{} }

func (m *Monitor) Start(context.Context) error { return nil }

func (m *Monitor) Stop() {}

func (m *Monitor) Running() bool { return false }

func (m *Monitor) Latest() (Event, bool) { return Event{}, false }
