//go:build linux

package hotplug

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"github.com/five82/qrscan/internal/logging"
)

// Monitor listens for video4linux add and remove uevents.
type Monitor struct {
	logger  *slog.Logger
	handler func(Event)
	latest  latest

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewMonitor returns an unstarted Monitor. handler may be nil.
func NewMonitor(logger *slog.Logger, handler func(Event)) *Monitor {
	return &Monitor{
		logger:  logging.NewComponentLogger(logger, "hotplug"),
		handler: handler,
	}
}

// Start connects to the netlink socket. Connection failures are logged and
// leave the Monitor idle.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket",
			logging.Error(err),
			logging.String(logging.FieldEventType, "hotplug_connect_failed"),
			logging.String(logging.FieldErrorHint, "check permission to open netlink sockets"),
			logging.String(logging.FieldImpact, "camera plug and unplug notices unavailable"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true
	go m.loop(ctx, conn, m.quit)

	m.logger.Info("hotplug monitor started",
		logging.String(logging.FieldEventType, "hotplug_started"),
	)
	return nil
}

// Stop closes the socket. It is safe on an unstarted or nil Monitor.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.quit)
	m.quit = nil
	_ = m.conn.Close()
	m.conn = nil
	m.running = false
}

// Running reports whether the Monitor is listening.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Latest returns the most recent event, if any.
func (m *Monitor) Latest() (Event, bool) {
	if m == nil {
		return Event{}, false
	}
	return m.latest.get()
}

func (m *Monitor) loop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "hotplug_monitor_error"),
				logging.String(logging.FieldImpact, "camera notices may be missed"),
			)
		}
	}
}

func buildMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "video4linux",
		},
	})
	return rules
}

func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	device := deviceName(uevent.Env)
	if device == "" {
		m.logger.Debug("ignoring uevent without device name",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj),
		)
		return
	}

	event := Event{Action: string(uevent.Action), Device: device, At: time.Now()}
	m.latest.set(event)
	m.logger.Info("video device changed",
		logging.String(logging.FieldEventType, "hotplug_"+event.Action),
		logging.String("device", device),
	)
	if m.handler != nil {
		m.handler(event)
	}
}
