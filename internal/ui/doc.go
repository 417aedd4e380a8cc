// Package ui provides the qrscan terminal interface built on Bubble Tea.
//
// The Model never touches the camera. It polls a Scanner for snapshots on a
// short tick and renders them:
//
//   - Header: toggle button ([ Scan ] / [ Stop ]), scanning indicator,
//     session state badge, code count and transient notices
//   - Preview: luminance rendering of the latest frame with detected
//     corners marked
//   - Codes: the decoded payloads in first-seen order; enter copies the
//     selected one to the clipboard
//   - Logs: a tail of the qrscan log file
//
// Toggling and clipboard writes run as tea.Cmds so a slow camera release
// never stalls input handling.
package ui
