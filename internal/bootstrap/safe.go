package bootstrap

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/renderinc/qna-board/internal/view"
)

// Safe runs fn and turns a panic into a log line, a generic error toast and
// an error
func (a *App) Safe(name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bootstrap: %s panicked: %v\n%s", name, r, debug.Stack())
			a.ctrl.Toast("Something went wrong. Please try again.", view.ToastError)
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	fn()
	return nil
}
