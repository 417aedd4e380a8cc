// Package scan runs the camera-to-decoder loop and owns the set of codes it
// has found.
//
// # Overview
//
// A Controller flips scanning on and off. Each activation mounts a fresh
// Session, which acquires a camera stream, steps through frames on its own
// goroutine, and records every distinct payload in first-seen order.
// Deactivation unmounts the Session and releases the camera.
//
// # Session Lifecycle
//
//	Idle ──Mount──> Acquiring ──ok──> Streaming ──> Looping ──Unmount──> Stopped
//	                    │
//	                    └──denied / timeout──> Idle (inert until unmounted)
//
// # Frame Step
//
// Every tick of the frame ticker runs one step, never overlapping:
//
//  1. Skip the step if the stream reports a zero width or height.
//  2. Copy the current frame onto a raster at native resolution.
//  3. Hand the raster pixels to the decoder.
//  4. Redraw the raster from the stream; it backs the preview.
//  5. On a match mark the session as scanning, and add the payload to the
//     results, notifying once when it is new. On a miss clear the flag.
//
// # Concurrency
//
// Steps and teardown share one mutex. Unmount flips the liveness flag, waits
// for an in-flight step, stops every track once and joins the loop
// goroutine, so no decode can happen after it returns. The UI reads state
// through Snapshot, which never waits on a decode.
package scan
