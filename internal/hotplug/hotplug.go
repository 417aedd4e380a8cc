// Package hotplug reports video capture devices appearing and disappearing.
//
// On Linux a Monitor listens for video4linux uevents on the kernel netlink
// socket. Elsewhere, or when the socket cannot be opened, the Monitor stays
// silent; scanning never depends on it.
package hotplug

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Action values carried by Event.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Event is one device change.
type Event struct {
	Action string
	Device string
	At     time.Time
}

// Notice renders the event for the status line.
func (e Event) Notice() string {
	switch e.Action {
	case ActionAdd:
		return fmt.Sprintf("camera connected: %s", e.Device)
	case ActionRemove:
		return fmt.Sprintf("camera disconnected: %s", e.Device)
	default:
		return fmt.Sprintf("camera %s: %s", e.Action, e.Device)
	}
}

// latest holds the most recent event for pollers.
type latest struct {
	mu    sync.Mutex
	event Event
	ok    bool
}

func (l *latest) set(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.event, l.ok = e, true
}

func (l *latest) get() (Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.event, l.ok
}

// deviceName resolves the /dev node from uevent environment values.
func deviceName(env map[string]string) string {
	if name := strings.TrimSpace(env["DEVNAME"]); name != "" {
		if !strings.HasPrefix(name, "/") {
			return "/dev/" + name
		}
		return name
	}
	devpath := strings.TrimRight(env["DEVPATH"], "/")
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	return "/dev/" + parts[len(parts)-1]
}
