package bootstrap

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs only the last of a burst of calls, once the burst has been
// quiet for the delay
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, cancelling anything scheduled before
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels the scheduled call, if any
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// SearchInput searches for keyword once typing pauses
func (a *App) SearchInput(keyword string) {
	a.search.Trigger(func() {
		a.Safe("search", func() {
			a.ctrl.Search(a.background(), keyword)
		})
	})
}

// SearchNow searches immediately, dropping any pending debounced search
func (a *App) SearchNow(ctx context.Context, keyword string) bool {
	a.search.Stop()
	var ok bool
	a.Safe("search", func() {
		ok = a.ctrl.Search(ctx, keyword)
	})
	return ok
}
