// Package logging assembles the structured slog loggers used across qrscan.
//
// The terminal belongs to the TUI, so log output is routed to a file under the
// configured state directory. The JSON format is what the in-app Logs view
// parses; the console format is plain slog text for humans tailing the file.
package logging
