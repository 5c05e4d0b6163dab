package ui

import (
	"context"
	"log"
	"strings"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/search"
	"github.com/renderinc/qna-board/internal/view"
)

// LoadPosts fetches the current page with the current filters. It is a no-op
// returning false while another load is outstanding, and returns true once
// a response (or failure) has been applied.
func (c *Controller) LoadPosts(ctx context.Context) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return false
	}
	c.loading = true
	c.listSeq++
	seq := c.listSeq
	params := qna.ListParams{
		Page:         c.page,
		Size:         c.opts.PageSize,
		Keyword:      c.filters.Keyword,
		Category:     c.filters.Category,
		AnswerStatus: c.filters.AnswerStatus,
		MyPostsOnly:  c.filters.MyPostsOnly,
	}
	c.mu.Unlock()

	res, err := c.api.ListPosts(ctx, params)

	var highlights map[int64][]search.Range
	if err == nil && params.Keyword != "" {
		highlights = c.highlight(params.Keyword, res.Data)
	}

	c.mu.Lock()
	c.loading = false
	if seq != c.listSeq {
		c.mu.Unlock()
		return false
	}
	if err != nil {
		log.Printf("ui: load posts: %v", err)
		c.list = listState{}
		c.showToastLocked("Failed to load posts.", view.ToastError)
		c.mu.Unlock()
		return true
	}
	c.list = listState{
		posts:      res.Data,
		highlights: highlights,
		total:      res.TotalElements,
		current:    res.CurrentPage,
		totalPages: res.TotalPages,
		hasPrev:    res.HasPrevious,
		hasNext:    res.HasNext,
	}
	c.page = res.CurrentPage
	c.lastLoad = c.now()
	c.mu.Unlock()

	c.runAfterLoad(ctx)
	return true
}

func (c *Controller) highlight(keyword string, posts []qna.PostSummary) map[int64][]search.Range {
	stripped := make([]qna.PostSummary, len(posts))
	for i, p := range posts {
		p.Title = view.StripHTML(p.Title)
		stripped[i] = p
	}
	ranges, err := c.opts.Highlighter.MatchTitles(keyword, stripped)
	if err != nil {
		log.Printf("ui: highlight %q: %v", keyword, err)
		return nil
	}
	return ranges
}

// Search sets the keyword, resets to the first page and reloads
func (c *Controller) Search(ctx context.Context, keyword string) bool {
	c.mu.Lock()
	c.filters.Keyword = strings.TrimSpace(keyword)
	c.page = 0
	c.mu.Unlock()
	return c.LoadPosts(ctx)
}

// ChangeFilters replaces the category, status and my-posts filters, resets
// to the first page and reloads. MyPostsOnly is ignored without a session.
func (c *Controller) ChangeFilters(ctx context.Context, category, answerStatus string, myPostsOnly bool) bool {
	if c.user() == nil {
		myPostsOnly = false
	}
	c.mu.Lock()
	c.filters.Category = category
	c.filters.AnswerStatus = answerStatus
	c.filters.MyPostsOnly = myPostsOnly
	c.page = 0
	c.mu.Unlock()
	return c.LoadPosts(ctx)
}

// ResetFilters clears every filter, returns to the first page and reloads
func (c *Controller) ResetFilters(ctx context.Context) bool {
	c.mu.Lock()
	c.filters = Filters{}
	c.page = 0
	c.mu.Unlock()
	return c.LoadPosts(ctx)
}

// GoToPage loads page (zero-based). Pages outside the known range are ignored.
func (c *Controller) GoToPage(ctx context.Context, page int) bool {
	c.mu.Lock()
	if page < 0 || (c.list.totalPages > 0 && page >= c.list.totalPages) {
		c.mu.Unlock()
		return false
	}
	c.page = page
	c.mu.Unlock()
	return c.LoadPosts(ctx)
}

// SetState replaces filters and page without loading, for restoring a
// saved location
func (c *Controller) SetState(f Filters, page int) {
	if page < 0 {
		page = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = f
	c.page = page
}

// Filters returns the current filters and page
func (c *Controller) Filters() (Filters, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters, c.page
}

// IsLoading reports whether a list load is outstanding
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}
