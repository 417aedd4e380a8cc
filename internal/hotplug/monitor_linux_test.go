//go:build linux

package hotplug

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"
)

func TestBuildMatcher(t *testing.T) {
	matcher := buildMatcher()

	cases := []struct {
		name  string
		event netlink.UEvent
		want  bool
	}{
		{"add camera", netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "video4linux"}}, true},
		{"remove camera", netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "video4linux"}}, true},
		{"change camera", netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "video4linux"}}, false},
		{"add disk", netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "block"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matcher.Evaluate(tc.event); got != tc.want {
				t.Fatalf("Evaluate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHandleEvent_RecordsLatestAndCallsHandler(t *testing.T) {
	var got []Event
	m := NewMonitor(nil, func(e Event) { got = append(got, e) })

	m.handleEvent(netlink.UEvent{Action: netlink.ADD, Env: map[string]string{}})
	if len(got) != 0 {
		t.Fatalf("handler called for event without device: %v", got)
	}

	m.handleEvent(netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"DEVNAME": "/dev/video0"}})
	m.handleEvent(netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"DEVNAME": "/dev/video0"}})

	if len(got) != 2 || got[0].Action != ActionAdd || got[1].Action != ActionRemove {
		t.Fatalf("events = %+v, want add then remove", got)
	}
	latest, ok := m.Latest()
	if !ok || latest.Action != ActionRemove || latest.Device != "/dev/video0" {
		t.Fatalf("Latest = %+v,%v, want remove /dev/video0", latest, ok)
	}
}
