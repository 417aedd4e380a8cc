package scan

import (
	"context"
	"slices"
	"sync"
)

// ControllerSnapshot is what the UI renders.
type ControllerSnapshot struct {
	Active bool
	// Session is the live session. HasSession is false while inactive, so
	// a stopped session's codes are never reported.
	Session    Snapshot
	HasSession bool
}

// Controller toggles scanning. Each activation mounts a fresh Session built
// by the factory; deactivation unmounts it.
type Controller struct {
	ctx        context.Context
	newSession func() *Session

	// toggleMu serializes activations and deactivations so a session is
	// fully unmounted, hooks included, before the next one mounts.
	toggleMu sync.Mutex

	mu        sync.Mutex
	active    bool
	current   *Session
	onUnmount []func(*Session)
}

// NewController returns an inactive Controller. Sessions are mounted under
// ctx.
func NewController(ctx context.Context, newSession func() *Session) *Controller {
	return &Controller{ctx: ctx, newSession: newSession}
}

// OnUnmount registers fn to receive every session after it is unmounted.
func (c *Controller) OnUnmount(fn func(*Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnmount = append(c.onUnmount, fn)
}

// Toggle flips scanning and reports the new state.
func (c *Controller) Toggle() bool {
	c.toggleMu.Lock()
	defer c.toggleMu.Unlock()

	c.mu.Lock()
	if !c.active {
		session := c.newSession()
		c.current = session
		c.active = true
		session.Mount(c.ctx)
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()
	c.deactivate()
	return false
}

// Active reports whether scanning is on.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Close unmounts the live session, if any.
func (c *Controller) Close() {
	c.toggleMu.Lock()
	defer c.toggleMu.Unlock()
	c.deactivate()
}

// deactivate must be called with toggleMu held.
func (c *Controller) deactivate() {
	c.mu.Lock()
	session := c.current
	c.current = nil
	c.active = false
	hooks := slices.Clone(c.onUnmount)
	c.mu.Unlock()

	if session == nil {
		return
	}
	session.Unmount()
	for _, hook := range hooks {
		hook(session)
	}
}

// Snapshot reports the active flag and the live session state.
func (c *Controller) Snapshot() ControllerSnapshot {
	c.mu.Lock()
	active := c.active
	session := c.current
	c.mu.Unlock()

	snap := ControllerSnapshot{Active: active}
	if session != nil {
		snap.Session = session.Snapshot()
		snap.HasSession = true
	}
	return snap
}
