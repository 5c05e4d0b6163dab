package bootstrap

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/renderinc/qna-board/internal/ui"
	"github.com/renderinc/qna-board/internal/view"
)

// KeyEvent is a keydown as reported by the page
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
	// Focus is the tag name of the focused element, or "contenteditable"
	Focus string `json:"focus"`
	// FocusID is the id of the focused element, if it has one
	FocusID string `json:"focusId"`
}

func (e KeyEvent) accel() bool {
	return e.Ctrl || e.Meta
}

// typing reports whether focus is in a text entry control
func (e KeyEvent) typing() bool {
	switch strings.ToLower(e.Focus) {
	case "input", "textarea", "select", "contenteditable":
		return true
	}
	return false
}

// KeyResult tells the page what happened. PreventDefault is set whenever the
// key was consumed.
type KeyResult struct {
	PreventDefault bool   `json:"preventDefault"`
	FocusSearch    bool   `json:"focusSearch,omitempty"`
	Focus          string `json:"focus,omitempty"`
}

// HandleKey runs the keyboard shortcuts
func (a *App) HandleKey(ctx context.Context, ev KeyEvent) KeyResult {
	var res KeyResult
	a.Safe("key "+ev.Key, func() {
		res = a.handleKey(ctx, ev)
	})
	return res
}

func (a *App) handleKey(ctx context.Context, ev KeyEvent) KeyResult {
	switch {
	case ev.accel() && ev.Key == "Enter":
		return a.submitOpenModal(ctx)

	case ev.Key == "Escape":
		return a.closeTopmost()

	case ev.accel() && strings.EqualFold(ev.Key, "k"):
		return KeyResult{PreventDefault: true, FocusSearch: true}

	case ev.Key == "Tab":
		return a.trapFocus(ev)

	case ev.accel() || ev.Alt || ev.typing():
		return KeyResult{}

	case ev.Key == "n":
		a.ctrl.OpenPostModal(ctx, 0)
		return KeyResult{PreventDefault: true}

	case ev.Key == "r":
		a.ctrl.LoadPosts(ctx)
		a.ctrl.Toast("List refreshed.", view.ToastSuccess)
		return KeyResult{PreventDefault: true}
	}
	return KeyResult{}
}

func (a *App) submitOpenModal(ctx context.Context) KeyResult {
	s := a.ctrl.State()
	switch {
	case s.Modal.Mode != ui.ModalClosed:
		if !s.Modal.Submitting {
			a.ctrl.SubmitPost(ctx)
		}
		return KeyResult{PreventDefault: true}
	case s.Detail.Open():
		if view.CanReply(s.User) && !s.Detail.ReplyBusy {
			a.ctrl.SubmitReply(ctx)
		}
		return KeyResult{PreventDefault: true}
	}
	return KeyResult{}
}

// closeTopmost closes the confirm dialog, the post modal or the detail, in
// that order
func (a *App) closeTopmost() KeyResult {
	switch {
	case a.ctrl.ConfirmOpen():
		a.ctrl.CancelConfirm()
	case a.ctrl.PostModalOpen():
		a.ctrl.ClosePostModal()
	case a.ctrl.DetailOpen():
		a.ctrl.CloseDetail()
	default:
		return KeyResult{}
	}
	return KeyResult{PreventDefault: true}
}

func (a *App) trapFocus(ev KeyEvent) KeyResult {
	var region ui.Region
	switch {
	case a.ctrl.ConfirmOpen():
		region = ui.RegionConfirm
	case a.ctrl.PostModalOpen():
		region = ui.RegionPostModal
	case a.ctrl.DetailOpen():
		region = ui.RegionDetail
	default:
		return KeyResult{}
	}

	modal := a.ctrl.Render(region)[region]
	next, ok := FocusTrap(Focusable(modal), ev.FocusID, ev.Shift)
	if !ok {
		return KeyResult{}
	}
	return KeyResult{PreventDefault: true, Focus: next}
}

// Focusable lists the elements inside n that take keyboard focus, in
// document order
func Focusable(n *html.Node) []*html.Node {
	return view.Find(n, func(c *html.Node) bool {
		_, disabled := view.Attr(c, "disabled")
		switch c.Data {
		case "a":
			_, ok := view.Attr(c, "href")
			return ok
		case "button", "textarea", "input", "select":
			return !disabled
		}
		tab, ok := view.Attr(c, "tabindex")
		return ok && tab != "-1"
	})
}

// FocusTrap keeps Tab inside a modal: from the last focusable element it
// wraps to the first, and with shift from the first to the last. It returns
// the id to focus, or false when the browser's default order is fine.
func FocusTrap(focusable []*html.Node, activeID string, shift bool) (string, bool) {
	if len(focusable) == 0 {
		return "", false
	}
	first, last := focusable[0], focusable[len(focusable)-1]

	var target *html.Node
	switch {
	case shift && isActive(first, activeID):
		target = last
	case !shift && isActive(last, activeID):
		target = first
	case activeID == "" || !containsID(focusable, activeID):
		// focus escaped the modal
		target = first
		if shift {
			target = last
		}
	default:
		return "", false
	}

	id, ok := view.Attr(target, "id")
	return id, ok && id != ""
}

func isActive(n *html.Node, activeID string) bool {
	id, ok := view.Attr(n, "id")
	return ok && id != "" && id == activeID
}

func containsID(nodes []*html.Node, id string) bool {
	for _, n := range nodes {
		if isActive(n, id) {
			return true
		}
	}
	return false
}
