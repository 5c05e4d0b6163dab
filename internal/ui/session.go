package ui

import (
	"context"
	"fmt"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/view"
)

// Login stores token and reloads the list under the new session
func (c *Controller) Login(ctx context.Context, token string) error {
	if _, err := qna.DecodeToken(token); err != nil {
		c.Toast("That token is not valid.", view.ToastError)
		return fmt.Errorf("login: %w", err)
	}
	if err := c.api.SetToken(token); err != nil {
		c.Toast("Could not save the token.", view.ToastError)
		return fmt.Errorf("login: %w", err)
	}
	c.LoadPosts(ctx)
	c.Toast("Logged in.", view.ToastSuccess)
	return nil
}

// Logout drops the token, closes anything that needs a session and resets
// the filters
func (c *Controller) Logout(ctx context.Context) {
	c.api.RemoveToken()

	c.mu.Lock()
	c.releasePreviewLocked()
	c.setModalLocked(ModalState{})
	c.mu.Unlock()

	c.ResetFilters(ctx)
	c.Toast("Logged out.", view.ToastSuccess)
}

// ExpireSession evicts an expired token. It reports whether one was evicted.
func (c *Controller) ExpireSession() bool {
	if c.api.Token() == "" || !c.api.IsTokenExpired() {
		return false
	}
	c.api.RemoveToken()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.MyPostsOnly = false
	return true
}
