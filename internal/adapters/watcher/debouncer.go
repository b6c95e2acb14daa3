package watcher

import (
	"slices"
	"sync"
	"time"
	"unique"
)

// DefaultDebounceWindow is the default quiet period before a changed path is dispatched.
const DefaultDebounceWindow = 50 * time.Millisecond

// Debouncer coalesces rapid events for the same path.
// Each path has its own window; the callback runs once per path after the path stays quiet.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]*pendingPath
	window   time.Duration
	callback func(path string)
	closed   bool
	inflight sync.WaitGroup
}

type pendingPath struct {
	timer *time.Timer
}

// NewDebouncer creates a new debouncer. A zero window dispatches every event immediately.
func NewDebouncer(window time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]*pendingPath),
		window:   window,
		callback: callback,
	}
}

// Add records an event for path and restarts its window.
func (d *Debouncer) Add(path string) {
	if d.window <= 0 {
		if d.callback != nil {
			d.callback(path)
		}
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	handle := unique.Make(path)
	if p, ok := d.pending[handle]; ok {
		p.timer.Stop()
	}
	p := &pendingPath{}
	p.timer = time.AfterFunc(d.window, func() { d.fire(handle, p) })
	d.pending[handle] = p
}

func (d *Debouncer) fire(handle unique.Handle[string], p *pendingPath) {
	d.mu.Lock()
	if d.closed || d.pending[handle] != p {
		// Flushed, stopped or superseded before the timer ran.
		d.mu.Unlock()
		return
	}
	delete(d.pending, handle)
	d.inflight.Add(1)
	d.mu.Unlock()
	defer d.inflight.Done()

	if d.callback != nil {
		d.callback(handle.Value())
	}
}

// Pending returns the number of paths waiting for their window to close.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush dispatches every pending path synchronously in lexical order.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for handle, p := range d.pending {
		p.timer.Stop()
		paths = append(paths, handle.Value())
	}
	clear(d.pending)
	d.mu.Unlock()

	slices.Sort(paths)
	if d.callback == nil {
		return
	}
	for _, path := range paths {
		d.callback(path)
	}
}

// Stop drops every pending path without dispatching it and waits for callbacks
// already running. Events added after Stop are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.closed = true
	for _, p := range d.pending {
		p.timer.Stop()
	}
	clear(d.pending)
	d.mu.Unlock()

	d.inflight.Wait()
}
