package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero", 0, nil},
		{"fewer than file", 3, all[7:]},
		{"exactly file", 10, all},
		{"more than file", 50, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read = %v, %v, want nil, nil", lines, err)
	}
}

func TestParse_JSONLine(t *testing.T) {
	line := `{"ts":"2026-03-01T12:00:05.5Z","level":"info","msg":"new code detected","component":"scan","session_id":"abc","length":5}`
	e := Parse(line)

	if e.Level != "info" || e.Message != "new code detected" || e.Component != "scan" {
		t.Fatalf("Parse = %+v, want info/new code detected/scan", e)
	}
	want := time.Date(2026, 3, 1, 12, 0, 5, 500_000_000, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if e.Fields["session_id"] != "abc" || e.Fields["length"] != "5" {
		t.Fatalf("Fields = %v, want session_id and length", e.Fields)
	}
}

func TestParse_PlainLineKeptRaw(t *testing.T) {
	for _, line := range []string{"time=... level=INFO msg=hi", "{broken json"} {
		e := Parse(line)
		if e.Raw != line || e.Message != "" {
			t.Fatalf("Parse(%q) = %+v, want raw only", line, e)
		}
		if got := Format(e); got != line {
			t.Fatalf("Format = %q, want %q", got, line)
		}
	}
}

func TestFormat_SortsFields(t *testing.T) {
	e := Entry{
		Level:     "warn",
		Message:   "camera acquisition failed",
		Component: "scan",
		Fields:    map[string]string{"z": "1", "a": "2"},
	}
	want := "WARN  [scan] camera acquisition failed a=2 z=1"
	if got := Format(e); got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestReadEntries_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrscan.log")
	body := `{"level":"info","msg":"one"}` + "\n\n" + `{"level":"error","msg":"two"}` + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := ReadEntries(path, 10)
	if err != nil {
		t.Fatalf("ReadEntries returned error: %v", err)
	}
	if len(entries) != 2 || entries[1].Level != "error" {
		t.Fatalf("entries = %+v, want two with error last", entries)
	}
}
