package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	// Fields holds the remaining attributes, stringified.
	Fields map[string]string
	// Raw is the original line; lines that are not JSON only set Raw.
	Raw string
}

// Parse decodes a JSON log line written by the qrscan logger.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return entry
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return entry
	}

	for key, value := range raw {
		switch key {
		case "ts", "time":
			if s, ok := value.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					entry.Time = t
				}
			}
		case "level":
			entry.Level = strings.ToLower(fmt.Sprint(value))
		case "msg":
			entry.Message = fmt.Sprint(value)
		case "component":
			entry.Component = fmt.Sprint(value)
		default:
			if entry.Fields == nil {
				entry.Fields = make(map[string]string)
			}
			entry.Fields[key] = fmt.Sprint(value)
		}
	}
	return entry
}

// ReadEntries tails path and parses each line.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Format renders an entry as a single plain line:
//
//	15:04:05 INFO  [scan] new code detected event_type=code_detected
func Format(e Entry) string {
	if e.Message == "" && e.Level == "" {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level))
	if e.Component != "" {
		fmt.Fprintf(&b, "[%s] ", e.Component)
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%s", key, e.Fields[key])
	}
	return b.String()
}
