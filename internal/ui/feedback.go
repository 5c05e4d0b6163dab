package ui

import (
	"context"
	"time"

	"github.com/renderinc/qna-board/internal/view"
)

// Toast shows message in the banner, replacing whatever is displayed, and
// hides it after the toast duration
func (c *Controller) Toast(message string, typ view.ToastType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showToastLocked(message, typ)
}

func (c *Controller) showToastLocked(message string, typ view.ToastType) {
	if c.toast.timer != nil {
		c.toast.timer.Stop()
	}
	c.toast.gen++
	gen := c.toast.gen
	c.toast.visible = true
	c.toast.typ = typ
	c.toast.message = message
	c.toast.timer = time.AfterFunc(c.opts.ToastDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.toast.gen == gen {
			c.toast.visible = false
			c.toast.timer = nil
		}
	})
}

// HideToast hides the banner now
func (c *Controller) HideToast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.toast.timer != nil {
		c.toast.timer.Stop()
		c.toast.timer = nil
	}
	c.toast.gen++
	c.toast.visible = false
}

// Confirm opens the confirmation dialog. onConfirm runs at most once, and
// only if the user confirms.
func (c *Controller) Confirm(title, message string, onConfirm func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirm = confirmState{open: true, title: title, message: message, callback: onConfirm}
}

// ConfirmOK closes the dialog and runs its callback. It reports whether a
// callback was run.
func (c *Controller) ConfirmOK(ctx context.Context) bool {
	c.mu.Lock()
	cb := c.confirm.callback
	c.confirm = confirmState{}
	c.mu.Unlock()

	if cb == nil {
		return false
	}
	cb(ctx)
	return true
}

// CancelConfirm closes the dialog without running its callback
func (c *Controller) CancelConfirm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirm = confirmState{}
}

// ConfirmOpen reports whether the confirmation dialog is showing
func (c *Controller) ConfirmOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirm.open
}
