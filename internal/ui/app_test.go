package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/qrscan/internal/hotplug"
	"github.com/five82/qrscan/internal/prefs"
	"github.com/five82/qrscan/internal/scan"
)

type fakeScanner struct {
	mu      sync.Mutex
	active  bool
	toggles int
	session scan.Snapshot
}

func (f *fakeScanner) Toggle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles++
	f.active = !f.active
	return f.active
}

func (f *fakeScanner) Snapshot() scan.ControllerSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return scan.ControllerSnapshot{Active: f.active, Session: f.session, HasSession: f.toggles > 0}
}

type fakeClipboard struct {
	got []string
	err error
}

func (f *fakeClipboard) WriteText(text string) error {
	f.got = append(f.got, text)
	return f.err
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return out, cmd
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	m := New(opts)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return m
}

func withCodes(t *testing.T, m Model, codes ...string) Model {
	t.Helper()
	m, _ = send(t, m, snapshotMsg(scan.ControllerSnapshot{
		Active:     true,
		HasSession: true,
		Session:    scan.Snapshot{State: scan.StateLooping, Codes: codes},
	}))
	return m
}

func TestToggleKey_FlipsScannerOffTheUpdateLoop(t *testing.T) {
	scanner := &fakeScanner{}
	m := newTestModel(t, Options{Scanner: scanner})

	for _, k := range []string{"s", " "} {
		var cmd tea.Cmd
		m, cmd = send(t, m, keyPress(k))
		if cmd == nil {
			t.Fatalf("key %q returned nil cmd, want toggle cmd", k)
		}
		msg := cmd()
		toggled, ok := msg.(toggledMsg)
		if !ok {
			t.Fatalf("toggle cmd returned %T, want toggledMsg", msg)
		}
		m, cmd = send(t, m, toggled)
		if m.snapshot.Active != scanner.active {
			t.Fatalf("snapshot.Active = %v, want %v", m.snapshot.Active, scanner.active)
		}
		if _, ok := cmd().(snapshotMsg); !ok {
			t.Fatalf("toggledMsg should fetch a fresh snapshot")
		}
	}
	if scanner.toggles != 2 {
		t.Fatalf("toggles = %d, want 2", scanner.toggles)
	}
}

func TestView_ButtonAndIndicatorFollowSnapshot(t *testing.T) {
	m := newTestModel(t, Options{Scanner: &fakeScanner{}})

	view := m.View()
	if !strings.Contains(view, "[ Scan ]") || !strings.Contains(view, "IDLE") {
		t.Fatalf("idle view missing button or indicator:\n%s", view)
	}
	if !strings.Contains(view, "Press s to start scanning") {
		t.Fatalf("idle view missing start hint:\n%s", view)
	}

	m, _ = send(t, m, snapshotMsg(scan.ControllerSnapshot{
		Active:     true,
		HasSession: true,
		Session: scan.Snapshot{
			State:    scan.StateLooping,
			Scanning: true,
			Codes:    []string{"https://example.com"},
		},
	}))
	view = m.View()
	for _, want := range []string{"[ Stop ]", "SCANNING", "looping", "https://example.com", "Codes (1)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("active view missing %q:\n%s", want, view)
		}
	}
}

func TestView_ShowsCameraDenial(t *testing.T) {
	m := newTestModel(t, Options{Scanner: &fakeScanner{}})
	m, _ = send(t, m, snapshotMsg(scan.ControllerSnapshot{
		Active:     true,
		HasSession: true,
		Session:    scan.Snapshot{State: scan.StateIdle, Err: errors.New("permission denied")},
	}))
	view := m.View()
	if !strings.Contains(view, "Camera error") || !strings.Contains(view, "IDLE") {
		t.Fatalf("denied view missing error or IDLE indicator:\n%s", view)
	}
}

func TestCopy_WritesSelectedCode(t *testing.T) {
	board := &fakeClipboard{}
	m := withCodes(t, newTestModel(t, Options{Clipboard: board}), "first", "second")

	m, _ = send(t, m, keyPress("j"))
	m, cmd := send(t, m, keyPress("enter"))
	if cmd == nil {
		t.Fatalf("enter returned nil cmd, want copy cmd")
	}
	m, _ = send(t, m, cmd())

	if len(board.got) != 1 || board.got[0] != "second" {
		t.Fatalf("clipboard writes = %v, want [second]", board.got)
	}
	if !strings.Contains(m.flash, "copied") || m.flashErr {
		t.Fatalf("flash = %q (err %v), want copied confirmation", m.flash, m.flashErr)
	}
}

func TestCopy_FailureFlashesError(t *testing.T) {
	board := &fakeClipboard{err: errors.New("no clipboard tool")}
	m := withCodes(t, newTestModel(t, Options{Clipboard: board}), "only")

	m, cmd := send(t, m, keyPress("enter"))
	m, _ = send(t, m, cmd())
	if !m.flashErr || !strings.Contains(m.flash, "no clipboard tool") {
		t.Fatalf("flash = %q (err %v), want failure", m.flash, m.flashErr)
	}
}

func TestCopy_NothingSelected(t *testing.T) {
	board := &fakeClipboard{}
	m := newTestModel(t, Options{Clipboard: board})
	if _, cmd := send(t, m, keyPress("enter")); cmd != nil {
		t.Fatalf("enter with no codes returned a cmd")
	}
}

func TestNavigation_ClampsToCodes(t *testing.T) {
	m := withCodes(t, newTestModel(t, Options{}), "a", "b", "c")

	steps := []struct {
		key  string
		want int
	}{
		{"k", 0},
		{"j", 1},
		{"j", 2},
		{"j", 2},
		{"g", 0},
		{"G", 2},
	}
	for _, step := range steps {
		m, _ = send(t, m, keyPress(step.key))
		if m.selected != step.want {
			t.Fatalf("after %q selected = %d, want %d", step.key, m.selected, step.want)
		}
	}

	// A shrinking list pulls the selection back in range.
	m = withCodes(t, m, "a")
	if m.selected != 0 {
		t.Fatalf("selected = %d after shrink, want 0", m.selected)
	}
}

func TestToggleActive_ResetsSelection(t *testing.T) {
	m := withCodes(t, newTestModel(t, Options{}), "a", "b")
	m, _ = send(t, m, keyPress("G"))
	m, _ = send(t, m, toggledMsg{active: true})
	if m.selected != 0 {
		t.Fatalf("selected = %d after new activation, want 0", m.selected)
	}
}

func TestToggleOff_ClearsCodeList(t *testing.T) {
	board := &fakeClipboard{}
	m := withCodes(t, newTestModel(t, Options{Clipboard: board}), "first", "second")
	if !strings.Contains(m.View(), "second") {
		t.Fatalf("active view missing codes:\n%s", m.View())
	}

	m, _ = send(t, m, toggledMsg{active: false})
	if got := m.codes(); len(got) != 0 {
		t.Fatalf("codes after stop = %v, want none", got)
	}
	view := m.View()
	if strings.Contains(view, "first") || strings.Contains(view, "second") {
		t.Fatalf("stopped view still lists codes:\n%s", view)
	}
	if _, cmd := send(t, m, keyPress("enter")); cmd != nil {
		t.Fatalf("enter after stop returned a copy cmd")
	}

	// A late snapshot of the stopped session is ignored too.
	m, _ = send(t, m, snapshotMsg(scan.ControllerSnapshot{
		HasSession: true,
		Session:    scan.Snapshot{State: scan.StateStopped, Codes: []string{"first"}},
	}))
	if got := m.codes(); len(got) != 0 {
		t.Fatalf("codes from stopped snapshot = %v, want none", got)
	}
}

func TestPreviewAndTheme_PersistPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m := newTestModel(t, Options{PrefsPath: path, Preview: true, ThemeName: "Nightfox"})

	m, _ = send(t, m, keyPress("v"))
	if m.preview {
		t.Fatalf("preview still on after v")
	}
	if got := prefs.Load(path); got.Preview {
		t.Fatalf("saved Preview = true, want false")
	}

	m, _ = send(t, m, keyPress("T"))
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	got := prefs.Load(path)
	if got.Theme != "Kanagawa" || got.Preview {
		t.Fatalf("saved prefs = %+v, want Kanagawa without preview", got)
	}
}

func TestTick_ExpiresFlashAndShowsHotplug(t *testing.T) {
	now := time.Now()
	event := hotplug.Event{Action: hotplug.ActionAdd, Device: "/dev/video2", At: now}
	m := newTestModel(t, Options{Hotplug: func() (hotplug.Event, bool) { return event, true }})
	m.flash = "copied: x"
	m.flashUntil = now.Add(-time.Millisecond)

	m, cmd := send(t, m, tickMsg(now))
	if cmd == nil {
		t.Fatalf("tick returned nil cmd, want next tick scheduled")
	}
	if m.flash != "" {
		t.Fatalf("flash = %q, want cleared", m.flash)
	}
	if m.notice != "camera connected: /dev/video2" {
		t.Fatalf("notice = %q, want hotplug notice", m.notice)
	}

	m, _ = send(t, m, tickMsg(now.Add(HotplugNoticeTTL+time.Second)))
	if m.notice != "" {
		t.Fatalf("notice = %q, want expired", m.notice)
	}
}

func TestHelp_AnyKeyCloses(t *testing.T) {
	scanner := &fakeScanner{}
	m := newTestModel(t, Options{Scanner: scanner})

	m, _ = send(t, m, keyPress("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m, cmd := send(t, m, keyPress("s"))
	if m.showHelp || cmd != nil {
		t.Fatalf("key while help open should only close help")
	}
	if scanner.toggles != 0 {
		t.Fatalf("toggles = %d, want 0", scanner.toggles)
	}
}

func TestLogsView_TailsLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrscan.log")
	line := `{"ts":"2026-01-02T03:04:05Z","level":"INFO","msg":"new code detected","component":"scan"}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m := newTestModel(t, Options{LogPath: path})

	m, cmd := send(t, m, keyPress("l"))
	if m.currentView != ViewLogs {
		t.Fatalf("currentView = %v, want ViewLogs", m.currentView)
	}
	if cmd == nil {
		t.Fatalf("entering logs returned nil cmd, want refresh")
	}
	m, _ = send(t, m, cmd())
	if len(m.logState.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(m.logState.entries))
	}
	if view := m.View(); !strings.Contains(view, "new code detected") {
		t.Fatalf("log view missing message:\n%s", view)
	}

	// Debounced: a second refresh inside the window is skipped.
	if cmd := m.refreshLogs(time.Now()); cmd != nil {
		t.Fatalf("refreshLogs inside debounce window returned a cmd")
	}

	m, _ = send(t, m, keyPress("esc"))
	if m.currentView != ViewScan {
		t.Fatalf("currentView = %v after esc, want ViewScan", m.currentView)
	}
}
