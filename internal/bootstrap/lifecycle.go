package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/renderinc/qna-board/internal/storage"
	"github.com/renderinc/qna-board/internal/ui"
	"github.com/renderinc/qna-board/internal/view"
)

// SetVisibility records the page becoming hidden or visible. Coming back
// after being hidden evicts an expired token and refreshes a stale list.
func (a *App) SetVisibility(ctx context.Context, visible bool) {
	a.mu.Lock()
	if !visible {
		a.hidden = true
		a.mu.Unlock()
		return
	}
	wasHidden := a.hidden
	a.hidden = false
	a.mu.Unlock()
	if !wasHidden {
		return
	}

	a.Safe("visibility", func() {
		if a.ctrl.ExpireSession() {
			a.ctrl.Toast("Your session has expired. Please log in again.", view.ToastWarning)
		}
		if a.opts.Now().Sub(a.ctrl.State().LastLoad) > a.opts.StaleAfter {
			a.ctrl.LoadPosts(ctx)
		}
	})
}

// SetOnline records a network change. Reconnecting reloads the list.
func (a *App) SetOnline(ctx context.Context, online bool) {
	a.mu.Lock()
	changed := a.online != online
	a.online = online
	a.mu.Unlock()
	if !changed {
		return
	}

	if !online {
		a.ctrl.Toast("You are offline.", view.ToastWarning)
		return
	}
	a.ctrl.Toast("Back online.", view.ToastSuccess)
	a.Safe("reconnect", func() {
		a.ctrl.LoadPosts(ctx)
	})
}

// SaveScroll stores the list's scroll offset for this browser session
func (a *App) SaveScroll(y int) error {
	if err := a.session.Set(storage.ScrollPositionKey, strconv.Itoa(y)); err != nil {
		return fmt.Errorf("save scroll position: %w", err)
	}
	return nil
}

// TakeScroll returns the offset to restore, once
func (a *App) TakeScroll() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pendingScroll == nil {
		return 0, false
	}
	y := *a.pendingScroll
	a.pendingScroll = nil
	return y, true
}

// checkScroll picks up a saved offset after the first load of the first
// page following Start
func (a *App) checkScroll(ctx context.Context, s ui.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scrollChecked || s.Page != 0 {
		return
	}
	a.scrollChecked = true

	v, err := a.session.Get(storage.ScrollPositionKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("bootstrap: read scroll position: %v", err)
		}
		return
	}
	if err := a.session.Delete(storage.ScrollPositionKey); err != nil {
		log.Printf("bootstrap: clear scroll position: %v", err)
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	a.pendingScroll = &y
}
