// Package ui owns the board's view state. The Controller runs every user
// action against the API, keeps the resulting state behind a mutex, and
// renders it through the view package.
package ui

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/search"
)

// API is the part of the QnA client the controller uses
type API interface {
	ListPosts(ctx context.Context, params qna.ListParams) (*qna.ListResponse, error)
	GetPost(ctx context.Context, id int64) (*qna.Post, error)
	CreatePost(ctx context.Context, in qna.PostInput) (*qna.Post, error)
	UpdatePost(ctx context.Context, id int64, up qna.PostUpdate) (*qna.Post, error)
	DeletePost(ctx context.Context, id int64) error

	ListReplies(ctx context.Context, postID int64) ([]qna.Reply, error)
	CreateReply(ctx context.Context, postID int64, content string) (*qna.Reply, error)
	UpdateReply(ctx context.Context, replyID int64, content string) (*qna.Reply, error)
	DeleteReply(ctx context.Context, replyID int64) error

	ValidateFile(f *qna.ImageFile) qna.Validation

	SetToken(token string) error
	RemoveToken()
	Token() string
	CurrentUser() *qna.Session
	IsTokenExpired() bool
}

var _ API = (*qna.Client)(nil)

// Highlighter finds keyword ranges in post titles
type Highlighter interface {
	MatchTitles(keyword string, posts []qna.PostSummary) (map[int64][]search.Range, error)
}

// Middleware is run by the controller after its own logic. Either hook may
// be nil.
type Middleware struct {
	Name string
	// AfterLoad runs after every successful list load with the new state
	AfterLoad func(ctx context.Context, s State)
	// AfterRender may rewrite a rendered region in place
	AfterRender func(region Region, n *html.Node)
}

// Options configure a Controller. Zero values get defaults.
type Options struct {
	PageSize      int
	ToastDuration time.Duration
	Now           func() time.Time
	Previews      *PreviewStore
	Highlighter   Highlighter
	// ImageBase is prefixed to root-relative image paths from the API
	ImageBase string
}

const (
	DefaultPageSize      = 5
	DefaultToastDuration = 3 * time.Second
)

// Controller holds the client state. All methods are safe for concurrent
// use; the lock is never held across an API call.
type Controller struct {
	api  API
	opts Options

	mu sync.Mutex

	filters  Filters
	page     int
	loading  bool
	list     listState
	lastLoad time.Time

	modal   ModalState
	detail  DetailState
	confirm confirmState
	toast   toastState

	listSeq    uint64
	modalSeq   uint64
	detailSeq  uint64
	repliesSeq uint64

	hooks []Middleware
}

// New creates a controller bound to api
func New(api API, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = DefaultToastDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Previews == nil {
		opts.Previews = NewPreviewStore(DefaultPreviewPrefix)
	}
	if opts.Highlighter == nil {
		opts.Highlighter = search.Highlighter{}
	}
	return &Controller{api: api, opts: opts}
}

// Use appends a middleware. Hooks run in registration order.
func (c *Controller) Use(m Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, m)
	log.Printf("ui: registered middleware %q", m.Name)
}

// Previews returns the store that holds staged image previews
func (c *Controller) Previews() *PreviewStore {
	return c.opts.Previews
}

// Session returns the decoded session of the current token, or nil
func (c *Controller) Session() *qna.Session {
	return c.api.CurrentUser()
}

// IsTokenExpired reports whether the stored token is missing or expired
func (c *Controller) IsTokenExpired() bool {
	return c.api.IsTokenExpired()
}

// HasToken reports whether any token is stored, expired or not
func (c *Controller) HasToken() bool {
	return c.api.Token() != ""
}

func (c *Controller) hooksSnapshot() []Middleware {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Middleware(nil), c.hooks...)
}

func (c *Controller) runAfterLoad(ctx context.Context) {
	hooks := c.hooksSnapshot()
	if len(hooks) == 0 {
		return
	}
	s := c.State()
	for _, h := range hooks {
		if h.AfterLoad != nil {
			h.AfterLoad(ctx, s)
		}
	}
}

func (c *Controller) now() time.Time {
	return c.opts.Now()
}
