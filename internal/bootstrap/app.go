// Package bootstrap layers the page-wide behaviors on top of the ui
// controller: keyboard shortcuts, history, visibility and network changes,
// scroll restore, clipboard helpers and render middleware.
package bootstrap

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/renderinc/qna-board/internal/storage"
	"github.com/renderinc/qna-board/internal/ui"
)

const (
	DefaultStaleAfter  = 5 * time.Minute
	DefaultSearchDelay = 500 * time.Millisecond
)

// Options configure an App. Zero values get defaults.
type Options struct {
	// BaseURL is the page address used for share links
	BaseURL     string
	StaleAfter  time.Duration
	SearchDelay time.Duration
	Now         func() time.Time
	Clipboard   Clipboard
}

// App wires the glue around one controller
type App struct {
	ctrl    *ui.Controller
	session storage.Store
	opts    Options
	history *History
	search  *Debouncer

	mu            sync.Mutex
	ctx           context.Context
	hidden        bool
	online        bool
	scrollChecked bool
	pendingScroll *int
	nav           Navigation
}

// New creates the glue for ctrl. session holds per-tab state such as the
// scroll position.
func New(ctrl *ui.Controller, session storage.Store, opts Options) *App {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = DefaultSearchDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Clipboard == nil {
		opts.Clipboard = SystemClipboard{}
	}

	a := &App{
		ctrl:    ctrl,
		session: session,
		opts:    opts,
		history: NewHistory(),
		search:  NewDebouncer(opts.SearchDelay),
		ctx:     context.Background(),
		online:  true,
	}

	ctrl.Use(ui.Middleware{Name: "history", AfterLoad: a.saveHistory})
	ctrl.Use(ui.Middleware{Name: "scroll-restore", AfterLoad: a.checkScroll})
	ctrl.Use(ui.Middleware{Name: "lazy-images", AfterRender: lazyImages})
	ctrl.Use(ui.Middleware{Name: "image-fallback", AfterRender: imageFallback})
	ctrl.Use(ui.Middleware{Name: "aria-labels", AfterRender: ariaLabels})
	return a
}

// Controller returns the wrapped controller
func (a *App) Controller() *ui.Controller {
	return a.ctrl
}

// Start restores filters from the initial query string and loads the list.
// ctx outlives single requests and is used by delayed work such as the
// debounced search. Every Start is a new page load, so a saved scroll
// offset is picked up again.
func (a *App) Start(ctx context.Context, rawQuery string) {
	a.mu.Lock()
	a.ctx = ctx
	a.scrollChecked = false
	a.pendingScroll = nil
	a.mu.Unlock()

	f, page := DecodeQuery(strings.TrimPrefix(rawQuery, "?"))
	a.ctrl.SetState(f, page)
	a.history.Replace(EncodeQuery(f, page))

	a.Safe("start", func() {
		a.ctrl.LoadPosts(ctx)
	})
}

// Close stops pending delayed work
func (a *App) Close() {
	a.search.Stop()
}

func (a *App) background() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}
