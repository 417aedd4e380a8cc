// Package app is the composition root for qrscan.
//
// Run wires the pieces together and blocks in the TUI:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read ~/.config/qrscan/config.toml
//	       ├─────> logging.NewFromConfig  JSON log file under state_dir
//	       ├─────> prefs.Load()           Theme and preview choice
//	       ├─────> NewDevice()            webcam | screen | replay, behind a file lock
//	       ├─────> newNotifier()          oto beeper, or silent
//	       ├─────> scan.NewController()   One Session per activation
//	       ├─────> history.Open()         Only when history.enabled
//	       ├─────> hotplug.Monitor        video4linux notices (Linux)
//	       └─────> ui.Run()               Bubble Tea program (blocks)
//
// Only configuration and logging failures are fatal. A missing audio device
// or udev socket is logged and the feature is skipped. Camera denial is not
// an error here at all; it surfaces in the session snapshot when the user
// starts scanning.
//
// On exit the controller is closed first, which unmounts any live session
// and releases the camera before the history store closes.
package app
