package ui

import (
	"golang.org/x/net/html"

	"github.com/renderinc/qna-board/internal/view"
)

// Region names one independently rendered part of the page. The value is
// the id of its root element.
type Region string

const (
	RegionUser       Region = "userArea"
	RegionFilters    Region = "filters"
	RegionPosts      Region = "postsList"
	RegionPagination Region = "pagination"
	RegionTotal      Region = "totalCount"
	RegionLoading    Region = "loadingIndicator"
	RegionPostModal  Region = "postModal"
	RegionDetail     Region = "detailModal"
	RegionConfirm    Region = "confirmModal"
	RegionToast      Region = "toast"
)

// AllRegions lists every region in page order
var AllRegions = []Region{
	RegionUser, RegionFilters, RegionPosts, RegionPagination, RegionTotal,
	RegionLoading, RegionPostModal, RegionDetail, RegionConfirm, RegionToast,
}

// Render builds the requested regions, or all of them when none are named,
// and runs the after-render hooks on each
func (c *Controller) Render(regions ...Region) map[Region]*html.Node {
	if len(regions) == 0 {
		regions = AllRegions
	}
	s := c.State()
	hooks := c.hooksSnapshot()

	out := make(map[Region]*html.Node, len(regions))
	for _, r := range regions {
		n := c.renderRegion(r, s)
		if n == nil {
			continue
		}
		for _, h := range hooks {
			if h.AfterRender != nil {
				h.AfterRender(r, n)
			}
		}
		out[r] = n
	}
	return out
}

// RenderHTML is Render serialized to strings
func (c *Controller) RenderHTML(regions ...Region) map[Region]string {
	nodes := c.Render(regions...)
	out := make(map[Region]string, len(nodes))
	for r, n := range nodes {
		out[r] = view.Render(n)
	}
	return out
}

func (c *Controller) renderRegion(r Region, s State) *html.Node {
	now := c.now()
	switch r {
	case RegionUser:
		return view.Header(view.SessionView{User: s.User, MyPostsOnly: s.Filters.MyPostsOnly})
	case RegionFilters:
		return view.Filters(view.FilterView{
			Keyword:      s.Filters.Keyword,
			Category:     s.Filters.Category,
			AnswerStatus: s.Filters.AnswerStatus,
		})
	case RegionPosts:
		return view.PostList(view.PostListView{Posts: s.Posts, Highlights: s.Highlights, Now: now})
	case RegionPagination:
		return view.Pagination(view.PaginationView{
			CurrentPage: s.Page,
			TotalPages:  s.TotalPages,
			HasPrevious: s.HasPrev,
			HasNext:     s.HasNext,
		})
	case RegionTotal:
		return view.TotalCount(s.Total)
	case RegionLoading:
		return view.Loading(s.Loading)
	case RegionPostModal:
		return view.PostForm(view.PostFormView{
			Open:       s.Modal.Mode != ModalClosed,
			EditID:     s.Modal.EditID,
			Category:   s.Modal.Form.Category,
			Title:      s.Modal.Form.Title,
			Content:    s.Modal.Form.Content,
			IsLocked:   s.Modal.Form.IsLocked,
			PreviewURL: s.Modal.PreviewURL,
			Submitting: s.Modal.Submitting,
			Error:      s.Modal.Error,
		})
	case RegionDetail:
		return view.Detail(view.DetailView{
			Post:           s.Detail.Post,
			Replies:        s.Detail.Replies,
			Viewer:         s.User,
			Now:            now,
			ImageBase:      c.opts.ImageBase,
			ReplyDraft:     s.Detail.ReplyDraft,
			EditingReplyID: s.Detail.EditingReplyID,
			ReplyBusy:      s.Detail.ReplyBusy,
		})
	case RegionConfirm:
		return view.Confirm(view.ConfirmView{Open: s.ConfirmOpen, Title: s.ConfirmTitle, Message: s.ConfirmMessage})
	case RegionToast:
		return view.Toast(view.ToastView{Visible: s.ToastVisible, Type: s.ToastType, Message: s.ToastMessage})
	}
	return nil
}
