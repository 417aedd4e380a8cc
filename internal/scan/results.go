package scan

import "sync"

// Results is an insertion-ordered set of decoded payloads. The zero value is
// ready to use.
type Results struct {
	mu    sync.RWMutex
	order []string
	seen  map[string]struct{}
}

// Add records text and reports whether it was new.
func (r *Results) Add(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	if _, ok := r.seen[text]; ok {
		return false
	}
	r.seen[text] = struct{}{}
	r.order = append(r.order, text)
	return true
}

// Contains reports whether text has been recorded.
func (r *Results) Contains(text string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.seen[text]
	return ok
}

// Len returns the number of distinct payloads.
func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Snapshot returns the payloads in first-seen order.
func (r *Results) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil
	}
	dup := make([]string, len(r.order))
	copy(dup, r.order)
	return dup
}
