// Command qrscan scans QR codes from a camera in the terminal.
//
// Usage:
//
//	qrscan [--config FILE] [--prefs FILE]   run the scanner TUI
//	qrscan decode [--json] FILE...          decode still images
//	qrscan history [--limit N] [--json]     list recorded sessions
//
// The history command prints a table on a terminal and JSON otherwise.
package main
