package ui

import (
	"context"
	"time"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/search"
	"github.com/renderinc/qna-board/internal/view"
)

// Filters narrow the post list
type Filters struct {
	Keyword      string
	Category     string
	AnswerStatus string
	MyPostsOnly  bool
}

type listState struct {
	posts      []qna.PostSummary
	highlights map[int64][]search.Range
	total      int64
	current    int
	totalPages int
	hasPrev    bool
	hasNext    bool
}

// ModalMode is the state of the post modal
type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalCreate
	ModalEdit
)

func (m ModalMode) String() string {
	switch m {
	case ModalCreate:
		return "create"
	case ModalEdit:
		return "edit"
	default:
		return "closed"
	}
}

// PostForm holds the editable fields of the post modal
type PostForm struct {
	Category string
	Title    string
	Content  string
	IsLocked bool
}

// ModalState is the post modal: its mode, form, staged image and submit state
type ModalState struct {
	Mode   ModalMode
	EditID int64
	Form   PostForm
	// Original is the post as loaded for editing
	Original *qna.Post
	Image    *qna.ImageFile
	// PreviewURL is either a staged preview or the existing image of Original
	PreviewURL  string
	RemoveImage bool
	Submitting  bool
	Error       string
}

// DetailState is the open post and its replies
type DetailState struct {
	Post           *qna.Post
	Replies        []qna.Reply
	ReplyDraft     string
	EditingReplyID int64
	ReplyBusy      bool
}

// Open reports whether a post is shown
func (d DetailState) Open() bool {
	return d.Post != nil
}

type confirmState struct {
	open     bool
	title    string
	message  string
	callback func(ctx context.Context)
}

type toastState struct {
	visible bool
	typ     view.ToastType
	message string
	gen     uint64
	timer   *time.Timer
}

// State is a copy of the controller state
type State struct {
	Filters Filters
	Page    int
	Loading bool

	Posts      []qna.PostSummary
	Highlights map[int64][]search.Range
	Total      int64
	TotalPages int
	HasPrev    bool
	HasNext    bool
	LastLoad   time.Time

	Modal  ModalState
	Detail DetailState

	ConfirmOpen    bool
	ConfirmTitle   string
	ConfirmMessage string

	ToastVisible bool
	ToastType    view.ToastType
	ToastMessage string

	User *qna.Session
}

// State returns a snapshot of the controller state
func (c *Controller) State() State {
	user := c.user()

	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Filters: c.filters,
		Page:    c.page,
		Loading: c.loading,

		Posts:      append([]qna.PostSummary(nil), c.list.posts...),
		Highlights: c.list.highlights,
		Total:      c.list.total,
		TotalPages: c.list.totalPages,
		HasPrev:    c.list.hasPrev,
		HasNext:    c.list.hasNext,
		LastLoad:   c.lastLoad,

		Modal:  c.modal,
		Detail: c.detailCopy(),

		ConfirmOpen:    c.confirm.open,
		ConfirmTitle:   c.confirm.title,
		ConfirmMessage: c.confirm.message,

		ToastVisible: c.toast.visible,
		ToastType:    c.toast.typ,
		ToastMessage: c.toast.message,

		User: user,
	}
}

func (c *Controller) detailCopy() DetailState {
	d := c.detail
	d.Replies = append([]qna.Reply(nil), c.detail.Replies...)
	return d
}

// user is the current session if it has not expired
func (c *Controller) user() *qna.Session {
	s := c.api.CurrentUser()
	if s == nil || !s.ExpiresAt.After(c.now()) {
		return nil
	}
	return s
}
