package hotplug

import "testing"

func TestDeviceName(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"absolute devname", map[string]string{"DEVNAME": "/dev/video0"}, "/dev/video0"},
		{"bare devname", map[string]string{"DEVNAME": "video2"}, "/dev/video2"},
		{"devpath fallback", map[string]string{"DEVPATH": "/devices/pci0000:00/usb1/1-1/1-1:1.0/video4linux/video1"}, "/dev/video1"},
		{"devpath trailing slash", map[string]string{"DEVPATH": "/devices/virtual/video4linux/video3/"}, "/dev/video3"},
		{"empty", map[string]string{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deviceName(tc.env); got != tc.want {
				t.Fatalf("deviceName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEventNotice(t *testing.T) {
	cases := map[string]string{
		ActionAdd:    "camera connected: /dev/video0",
		ActionRemove: "camera disconnected: /dev/video0",
		"change":     "camera change: /dev/video0",
	}
	for action, want := range cases {
		if got := (Event{Action: action, Device: "/dev/video0"}).Notice(); got != want {
			t.Fatalf("Notice(%s) = %q, want %q", action, got, want)
		}
	}
}

func TestMonitor_NilAndUnstartedAreSafe(t *testing.T) {
	var nilMonitor *Monitor
	nilMonitor.Stop()
	if nilMonitor.Running() {
		t.Fatal("nil monitor reports running")
	}
	if _, ok := nilMonitor.Latest(); ok {
		t.Fatal("nil monitor reports an event")
	}

	m := NewMonitor(nil, nil)
	m.Stop()
	m.Stop()
	if m.Running() {
		t.Fatal("unstarted monitor reports running")
	}
}
