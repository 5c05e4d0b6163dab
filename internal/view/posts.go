package view

import (
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/search"
)

// EmptyKind selects the wording of an empty-state block
type EmptyKind int

const (
	EmptyPosts EmptyKind = iota
	EmptyReplies
)

// PostListView is everything the post list needs
type PostListView struct {
	Posts []qna.PostSummary
	// Highlights are keyword ranges into StripHTML(title), per post id
	Highlights map[int64][]search.Range
	Now        time.Time
}

// PostList renders the list of posts, or the empty state when there are none
func PostList(v PostListView) *html.Node {
	list := el("div", a("id", "postsList", "class", "posts-list"))
	if len(v.Posts) == 0 {
		list.AppendChild(EmptyState(EmptyPosts))
		return list
	}
	for _, p := range v.Posts {
		list.AppendChild(postItem(p, v.Highlights[p.QnaID], v.Now))
	}
	return list
}

func postItem(p qna.PostSummary, ranges []search.Range, now time.Time) *html.Node {
	var mine, locked string
	if p.IsOwner {
		mine = "my-post"
	}
	if p.IsLocked {
		locked = "locked"
	}

	meta := el("div", a("class", "post-meta"),
		el("span", a("class", classes("category-badge", p.Category)), text(p.Category)),
		el("span", a("class", classes("status-badge", p.AnswerStatus)), text(p.AnswerStatus)),
	)
	if p.HasImage {
		meta.AppendChild(el("i", a("class", "fas fa-image", "title", "Image attached")))
	}
	if p.IsLocked {
		meta.AppendChild(el("i", a("class", "fas fa-lock", "title", "Locked post")))
	}

	title := el("h3", a("class", "post-title"))
	if p.IsOwner {
		title.AppendChild(el("span", a("class", "my-indicator"), text("MY")))
	}
	for _, n := range highlighted(StripHTML(p.Title), ranges) {
		title.AppendChild(n)
	}

	info := el("div", a("class", "post-info"),
		el("span", nil, icon("fas fa-user"), text(" "+p.UserNickname)),
		el("span", nil, icon("fas fa-clock"), text(" "+FormatDate(p.CreatedAt.Time, now))),
		el("span", nil, icon("fas fa-eye"), text(" "+strconv.Itoa(p.ViewCount))),
	)
	if p.ReplyCount > 0 {
		info.AppendChild(el("span", a("class", "reply-count"), icon("fas fa-comments"), text(" "+strconv.Itoa(p.ReplyCount))))
	}

	return el("div", a(
		"class", classes("post-item", mine, locked),
		"data-post-id", strconv.FormatInt(p.QnaID, 10),
		"data-action", "open-detail",
	),
		el("div", a("class", "post-header"), meta),
		title,
		info,
	)
}

// highlighted splits s into text and <mark> nodes. Ranges outside s or not
// on rune boundaries are ignored.
func highlighted(s string, ranges []search.Range) []*html.Node {
	var out []*html.Node
	pos := 0
	for _, r := range ranges {
		if r.Start < pos || r.End > len(s) || r.Start >= r.End {
			continue
		}
		if !utf8.RuneStart(s[r.Start]) || (r.End < len(s) && !utf8.RuneStart(s[r.End])) {
			continue
		}
		if r.Start > pos {
			out = append(out, text(s[pos:r.Start]))
		}
		out = append(out, el("mark", nil, text(s[r.Start:r.End])))
		pos = r.End
	}
	if pos < len(s) {
		out = append(out, text(s[pos:]))
	}
	return out
}

// EmptyState renders the placeholder shown when a list is empty
func EmptyState(kind EmptyKind) *html.Node {
	iconClass, heading, hint := "fas fa-inbox", "No posts yet", "Be the first to ask a question!"
	if kind == EmptyReplies {
		iconClass, heading, hint = "fas fa-comments", "No replies yet", "Please wait for an administrator to answer."
	}
	return el("div", a("class", "empty-state"),
		icon(iconClass),
		el("h3", nil, text(heading)),
		el("p", nil, text(hint)),
	)
}

// TotalCount renders the total number of matching posts
func TotalCount(total int64) *html.Node {
	return el("span", a("id", "totalCount"), text(strconv.FormatInt(total, 10)))
}

// Loading renders the loading indicator
func Loading(show bool) *html.Node {
	style := "display: none"
	if show {
		style = "display: flex"
	}
	return el("div", a("id", "loadingIndicator", "class", "loading", "style", style),
		icon("fas fa-spinner fa-spin"),
	)
}

// FilterView is the current filter bar state
type FilterView struct {
	Keyword      string
	Category     string
	AnswerStatus string
}

// Filters renders the search box and the category and status selects
func Filters(v FilterView) *html.Node {
	return el("div", a("id", "filters", "class", "filters"),
		el("input", a("id", "searchInput", "name", "keyword", "type", "search", "value", v.Keyword,
			"placeholder", "Search", "data-action", "search")),
		selectBox("categoryFilter", "category", "All categories", qna.Categories, v.Category),
		selectBox("statusFilter", "answerStatus", "All statuses", qna.AnswerStatuses, v.AnswerStatus),
		el("button", a("id", "resetFilters", "class", "btn btn-outline", "data-action", "reset-filters"),
			icon("fas fa-undo"), text(" Reset")),
	)
}

func selectBox(id, name, all string, values []string, selected string) *html.Node {
	s := el("select", a("id", id, "name", name, "data-action", "filter"),
		el("option", a("value", ""), text(all)))
	for _, v := range values {
		opt := el("option", a("value", v), text(v))
		if v == selected {
			SetAttr(opt, "selected", "")
		}
		s.AppendChild(opt)
	}
	return s
}
