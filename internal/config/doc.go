// Package config handles loading and parsing the qrscan configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/qrscan/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - State directory: ~/.local/state/qrscan (log file, camera lock, history db)
//   - Camera: webcam device 0 at 60 frame steps per second, 15s acquisition timeout
//   - Beep: enabled, 1000 Hz square wave for 100ms
//   - History: disabled
//
// # Example
//
//	state_dir = "~/.local/state/qrscan"
//	log_level = "debug"
//
//	[camera]
//	source = "replay"
//	replay_dir = "~/qr-samples"
//	fps = 30
//
//	[beep]
//	enabled = false
//
//	[history]
//	enabled = true
//
// Unknown camera sources and log formats are rejected; out-of-range numbers
// are replaced with their defaults.
package config
