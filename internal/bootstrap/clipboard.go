package bootstrap

import (
	"log"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/renderinc/qna-board/internal/view"
)

// Clipboard writes text somewhere the user can paste it from
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the desktop clipboard
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Copy puts text on the clipboard and reports the outcome in a toast
func (a *App) Copy(text string) bool {
	if err := a.opts.Clipboard.WriteAll(text); err != nil {
		log.Printf("bootstrap: copy to clipboard: %v", err)
		a.ctrl.Toast("Could not copy to the clipboard.", view.ToastError)
		return false
	}
	a.ctrl.Toast("Copied to the clipboard.", view.ToastSuccess)
	return true
}

// ShareLink is a deep link to the list as currently filtered
func (a *App) ShareLink() string {
	f, page := a.ctrl.Filters()
	base := a.opts.BaseURL
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return base + "?" + EncodeQuery(f, page)
}

// Share copies the deep link of the current list
func (a *App) Share() bool {
	return a.Copy(a.ShareLink())
}
