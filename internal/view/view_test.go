package view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/search"
)

func labels(items []PageItem) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestPagesWindow(t *testing.T) {
	items := Pages(PaginationView{CurrentPage: 5, TotalPages: 10, HasPrevious: true, HasNext: true})
	assert.Equal(t, []string{"‹", "1", "...", "4", "5", "6", "7", "8", "...", "10", "›"}, labels(items))

	for _, it := range items {
		if it.Kind == PageNumber && it.Label == "6" {
			assert.True(t, it.Active)
			assert.Equal(t, 5, it.Page)
		}
	}
	assert.False(t, items[0].Disabled)
	assert.False(t, items[len(items)-1].Disabled)
}

func TestPagesBounds(t *testing.T) {
	tests := []struct {
		name   string
		view   PaginationView
		want   []string
		prevOK bool
		nextOK bool
	}{
		{
			name:   "first page",
			view:   PaginationView{CurrentPage: 0, TotalPages: 10, HasNext: true},
			want:   []string{"‹", "1", "2", "3", "...", "10", "›"},
			nextOK: true,
		},
		{
			name:   "last page",
			view:   PaginationView{CurrentPage: 9, TotalPages: 10, HasPrevious: true},
			want:   []string{"‹", "1", "...", "8", "9", "10", "›"},
			prevOK: true,
		},
		{
			name:   "window touches first page",
			view:   PaginationView{CurrentPage: 3, TotalPages: 10, HasPrevious: true, HasNext: true},
			want:   []string{"‹", "1", "2", "3", "4", "5", "6", "...", "10", "›"},
			prevOK: true,
			nextOK: true,
		},
		{
			name:   "few pages",
			view:   PaginationView{CurrentPage: 1, TotalPages: 3, HasPrevious: true, HasNext: true},
			want:   []string{"‹", "1", "2", "3", "›"},
			prevOK: true,
			nextOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Pages(tt.view)
			assert.Equal(t, tt.want, labels(items))
			assert.Equal(t, !tt.prevOK, items[0].Disabled)
			assert.Equal(t, !tt.nextOK, items[len(items)-1].Disabled)
		})
	}
}

func TestPaginationSinglePage(t *testing.T) {
	assert.Nil(t, Pages(PaginationView{TotalPages: 1}))

	n := Pagination(PaginationView{TotalPages: 1})
	assert.Nil(t, n.FirstChild)
	assert.Equal(t, `<div id="pagination" class="pagination"></div>`, Render(n))
}

func TestPaginationButtons(t *testing.T) {
	n := Pagination(PaginationView{CurrentPage: 0, TotalPages: 2, HasNext: true})
	buttons := Find(n, ByTag("button"))
	require.Len(t, buttons, 4)

	prev := buttons[0]
	_, disabled := Attr(prev, "disabled")
	assert.True(t, disabled)

	assert.True(t, HasClass(buttons[1], "active"))
	page, _ := Attr(buttons[2], "data-page")
	assert.Equal(t, "1", page)
}

func TestPostList(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	posts := []qna.PostSummary{
		{
			QnaID: 7, Title: "Refund <b>now</b>", Category: qna.CategoryGeneral, AnswerStatus: qna.StatusPending,
			IsOwner: true, IsLocked: true, HasImage: true, ReplyCount: 2, ViewCount: 11,
			UserNickname: "kim", CreatedAt: qna.Timestamp{Time: now.Add(-time.Hour)},
		},
		{QnaID: 8, Title: "Other", Category: qna.CategoryReport, AnswerStatus: qna.StatusAnswered},
	}

	n := PostList(PostListView{
		Posts:      posts,
		Highlights: map[int64][]search.Range{7: {{Start: 0, End: 6}}},
		Now:        now,
	})

	items := Find(n, ByClass("post-item"))
	require.Len(t, items, 2)

	first := items[0]
	assert.True(t, HasClass(first, "my-post"))
	assert.True(t, HasClass(first, "locked"))
	id, _ := Attr(first, "data-post-id")
	assert.Equal(t, "7", id)
	assert.Len(t, Find(first, ByClass("my-indicator")), 1)
	assert.Len(t, Find(first, ByClass("fa-lock")), 1)
	assert.Len(t, Find(first, ByClass("fa-image")), 1)
	assert.Len(t, Find(first, ByClass("reply-count")), 1)

	marks := Find(first, ByTag("mark"))
	require.Len(t, marks, 1)
	assert.Equal(t, "Refund", TextContent(marks[0]))
	title := Find(first, ByClass("post-title"))[0]
	assert.Equal(t, "MYRefund now", TextContent(title))
	assert.Empty(t, Find(first, ByTag("b")))
	assert.Contains(t, TextContent(first), "11:00")

	second := items[1]
	assert.False(t, HasClass(second, "my-post"))
	assert.Empty(t, Find(second, ByClass("reply-count")))
	assert.Empty(t, Find(second, ByTag("mark")))
}

func TestPostListEmpty(t *testing.T) {
	n := PostList(PostListView{})
	empty := Find(n, ByClass("empty-state"))
	require.Len(t, empty, 1)
	assert.Contains(t, TextContent(empty[0]), "No posts yet")
}

func TestHighlightedIgnoresBadRanges(t *testing.T) {
	nodes := highlighted("abc", []search.Range{{Start: 1, End: 9}, {Start: 2, End: 1}})
	require.Len(t, nodes, 1)
	assert.Equal(t, "abc", nodes[0].Data)
}

func TestHighlightedIgnoresSplitRunes(t *testing.T) {
	title := "환불요청"
	nodes := highlighted(title, []search.Range{{Start: 1, End: 3}, {Start: 0, End: 4}})
	require.Len(t, nodes, 1)
	assert.Equal(t, title, nodes[0].Data)

	nodes = highlighted(title, []search.Range{{Start: 0, End: len("환불")}})
	require.Len(t, nodes, 2)
	assert.Equal(t, "mark", nodes[0].Data)
	assert.Equal(t, "환불", nodes[0].FirstChild.Data)
	assert.Equal(t, "요청", nodes[1].Data)
}

func TestDetailPermissions(t *testing.T) {
	post := &qna.Post{QnaID: 3, Title: "Hi", Content: "line1\nline2", ImagePath: "/uploads/a.png"}
	admin := &qna.Session{UserID: 1, UserAccount: qna.AdminAccount, IsAdmin: true}
	other := &qna.Session{UserID: 2, UserAccount: "user"}
	replies := []qna.Reply{
		{ReplyID: 10, AdminUserPID: 1, AdminNickname: "boss", ReplyContent: "mine"},
		{ReplyID: 11, AdminUserPID: 9, AdminNickname: "other", ReplyContent: "theirs"},
	}

	tests := []struct {
		name         string
		post         *qna.Post
		viewer       *qna.Session
		wantActions  bool
		wantComposer bool
		wantReplyEd  int
	}{
		{name: "anonymous", post: post, viewer: nil},
		{name: "stranger", post: post, viewer: other},
		{name: "owner", post: &qna.Post{QnaID: 3, IsOwner: true}, viewer: other, wantActions: true},
		{name: "admin", post: post, viewer: admin, wantActions: true, wantComposer: true, wantReplyEd: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Detail(DetailView{Post: tt.post, Replies: replies, Viewer: tt.viewer, ImageBase: "http://api/"})
			assert.Equal(t, tt.wantActions, len(Find(n, ByClass("detail-actions"))) == 1)
			assert.Equal(t, tt.wantComposer, len(Find(n, ByClass("reply-form"))) == 1)
			assert.Len(t, Find(n, ByClass("reply-actions-inline")), tt.wantReplyEd)
		})
	}
}

func TestDetailContent(t *testing.T) {
	n := Detail(DetailView{
		Post: &qna.Post{QnaID: 3, Title: "Hi", Content: "line1\nline2", ImagePath: "/uploads/a.png"},
	})
	assert.True(t, HasClass(n, "show"))
	assert.Len(t, Find(n, ByTag("br")), 1)
	img := Find(n, ByTag("img"))
	require.Len(t, img, 1)
	src, _ := Attr(img[0], "src")
	assert.Equal(t, "/uploads/a.png", src)

	assert.Len(t, Find(n, ByClass("empty-state")), 1)
	assert.False(t, HasClass(Detail(DetailView{}), "show"))
}

func TestReplyFormModes(t *testing.T) {
	create := ReplyForm("", 0, false)
	assert.Contains(t, TextContent(create), "Post reply")

	edit := ReplyForm("fix", 42, false)
	btn := Find(edit, ByTag("button"))[0]
	id, _ := Attr(btn, "data-reply-id")
	assert.Equal(t, "42", id)
	assert.Contains(t, TextContent(btn), "Update")
	assert.Equal(t, "3", TextContent(Find(edit, func(n *html.Node) bool {
		v, _ := Attr(n, "id")
		return v == "replyCounter"
	})[0]))

	busy := ReplyForm("x", 0, true)
	_, disabled := Attr(Find(busy, ByTag("button"))[0], "disabled")
	assert.True(t, disabled)
}

func TestPostForm(t *testing.T) {
	assert.Nil(t, PostForm(PostFormView{}).FirstChild)

	n := PostForm(PostFormView{
		Open: true, EditID: 5, Category: qna.CategoryReport, Title: "제목", IsLocked: true,
		PreviewURL: "/previews/abc", Error: "bad",
	})
	out := Render(n)
	assert.Contains(t, out, "Edit question")
	assert.Contains(t, out, `src="/previews/abc"`)
	assert.Contains(t, out, `<option value="신고" selected="">`)
	assert.Contains(t, out, `checked=""`)
	assert.Contains(t, out, `<span id="titleCounter">2</span>`)
	assert.Len(t, Find(n, ByClass("form-error")), 1)
}

func TestToast(t *testing.T) {
	tests := []struct {
		typ  ToastType
		icon string
	}{
		{ToastSuccess, "fa-check-circle"},
		{ToastError, "fa-exclamation-circle"},
		{ToastWarning, "fa-exclamation-triangle"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			n := Toast(ToastView{Visible: true, Type: tt.typ, Message: "<x>"})
			assert.True(t, HasClass(n, "show"))
			assert.True(t, HasClass(n, string(tt.typ)))
			assert.Len(t, Find(n, ByClass(tt.icon)), 1)
			assert.True(t, strings.Contains(Render(n), "&lt;x&gt;"))
		})
	}
	assert.False(t, HasClass(Toast(ToastView{}), "show"))
}

func TestHeaderGating(t *testing.T) {
	anon := Header(SessionView{})
	assert.Empty(t, Find(anon, ByClass("btn-primary")))
	assert.Contains(t, TextContent(anon), "Log in")

	user := Header(SessionView{User: &qna.Session{UserAccount: "lee"}, MyPostsOnly: true})
	assert.Len(t, Find(user, ByClass("btn-primary")), 1)
	assert.Contains(t, Render(user), `checked=""`)
}

func TestFormatDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"today", time.Date(2024, 3, 10, 9, 5, 0, 0, time.Local), "09:05"},
		{"yesterday", time.Date(2024, 3, 9, 23, 30, 0, 0, time.Local), "Yesterday 23:30"},
		{"this week", time.Date(2024, 3, 6, 8, 0, 0, 0, time.Local), "Wed 08:00"},
		{"older", time.Date(2024, 2, 1, 8, 0, 0, 0, time.Local), "2024-02-01 08:00"},
		{"zero", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.t, now))
		})
	}
}

func TestTruncateAndStrip(t *testing.T) {
	assert.Equal(t, "안녕...", TruncateText("안녕하세요", 2))
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "bold & plain", StripHTML("<b>bold</b> &amp; plain"))
	assert.Equal(t, "plain", StripHTML("plain"))
}
