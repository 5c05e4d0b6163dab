package bootstrap

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/renderinc/qna-board/internal/ui"
)

// EncodeQuery renders filters and page as the list's query string. page is
// always present; myPostsOnly only when set.
func EncodeQuery(f ui.Filters, page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if f.Keyword != "" {
		v.Set("keyword", f.Keyword)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.AnswerStatus != "" {
		v.Set("answerStatus", f.AnswerStatus)
	}
	if f.MyPostsOnly {
		v.Set("myPostsOnly", "true")
	}
	return v.Encode()
}

// DecodeQuery is the inverse of EncodeQuery. Bad or missing values fall back
// to their zero value.
func DecodeQuery(raw string) (ui.Filters, int) {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return ui.Filters{}, 0
	}
	page, err := strconv.Atoi(v.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	return ui.Filters{
		Keyword:      v.Get("keyword"),
		Category:     v.Get("category"),
		AnswerStatus: v.Get("answerStatus"),
		MyPostsOnly:  v.Get("myPostsOnly") == "true",
	}, page
}

// Navigation tells the browser how to update its address bar
type Navigation struct {
	Query string `json:"query"`
	Push  bool   `json:"push"`
}

// History mirrors the browser's session history of list locations
type History struct {
	mu      sync.Mutex
	entries []string
	index   int
}

func NewHistory() *History {
	return &History{entries: []string{""}}
}

// Current is the query of the active entry
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Save pushes q when it differs from the current entry and replaces it
// otherwise. It reports whether an entry was pushed.
func (h *History) Save(q string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[h.index] == q {
		return false
	}
	h.entries = append(h.entries[:h.index+1], q)
	h.index++
	return true
}

// Replace overwrites the current entry
func (h *History) Replace(q string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = q
}

// Seek moves to the entry equal to q that is nearest the current one. When
// no entry matches, the current entry is replaced.
func (h *History) Seek(q string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for d := 0; d < len(h.entries); d++ {
		for _, i := range []int{h.index - d, h.index + d} {
			if i >= 0 && i < len(h.entries) && h.entries[i] == q {
				h.index = i
				return
			}
		}
	}
	h.entries[h.index] = q
}

// Back moves to the previous entry
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return "", false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves to the next entry
func (h *History) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return "", false
	}
	h.index++
	return h.entries[h.index], true
}

// Len is the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (a *App) saveHistory(ctx context.Context, s ui.State) {
	q := EncodeQuery(s.Filters, s.Page)
	push := a.history.Save(q)

	a.mu.Lock()
	a.nav = Navigation{Query: q, Push: push}
	a.mu.Unlock()
}

// LastNavigation is the address update from the latest list load
func (a *App) LastNavigation() Navigation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nav
}

// Back restores the previous list location
func (a *App) Back(ctx context.Context) bool {
	q, ok := a.history.Back()
	if !ok {
		return false
	}
	a.restore(ctx, q)
	return true
}

// Forward restores the next list location
func (a *App) Forward(ctx context.Context) bool {
	q, ok := a.history.Forward()
	if !ok {
		return false
	}
	a.restore(ctx, q)
	return true
}

// Navigate restores the location the browser moved to on its own (a
// popstate). The mirror history moves to the matching entry.
func (a *App) Navigate(ctx context.Context, rawQuery string) {
	f, page := DecodeQuery(rawQuery)
	q := EncodeQuery(f, page)
	a.history.Seek(q)
	a.restore(ctx, q)
}

func (a *App) restore(ctx context.Context, q string) {
	f, page := DecodeQuery(q)
	a.ctrl.SetState(f, page)
	a.Safe("restore", func() {
		a.ctrl.LoadPosts(ctx)
	})
}
