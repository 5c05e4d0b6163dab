package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/storage"
	"github.com/renderinc/qna-board/internal/ui"
	"github.com/renderinc/qna-board/internal/view"
)

// backend is a fake QnA API that records list queries
type backend struct {
	mu    sync.Mutex
	lists []url.Values
}

func (b *backend) listQueries() []url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]url.Values(nil), b.lists...)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	b := &backend{}
	r := mux.NewRouter()
	r.HandleFunc("/api/qna", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.lists = append(b.lists, r.URL.Query())
		b.mu.Unlock()

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		writeJSON(w, map[string]interface{}{
			"success":       true,
			"data":          []map[string]interface{}{{"qnaId": 1, "title": "First post", "category": qna.CategoryGeneral}},
			"totalElements": 21,
			"currentPage":   page,
			"totalPages":    5,
			"hasPrevious":   page > 0,
			"hasNext":       page < 4,
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/qna/{id:[0-9]+}/replies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"success": true, "data": []interface{}{}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/qna/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(mux.Vars(r)["id"])
		writeJSON(w, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"qnaId": id, "title": "Post", "content": "body",
				"imagePath": "/uploads/p.png", "isOwner": true,
			},
		})
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type fixture struct {
	app     *App
	ctrl    *ui.Controller
	client  *qna.Client
	backend *backend
	session *storage.SessionStore
	clip    *fakeClipboard
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	b, srv := newBackend(t)

	db, err := storage.Open(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sess, err := storage.OpenSession()
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	client := qna.NewClient(srv.URL, db, sess)
	ctrl := ui.New(client, ui.Options{ToastDuration: time.Hour, ImageBase: srv.URL})

	clip := &fakeClipboard{}
	if opts.Clipboard == nil {
		opts.Clipboard = clip
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8090/"
	}
	app := New(ctrl, sess, opts)
	t.Cleanup(app.Close)

	return &fixture{app: app, ctrl: ctrl, client: client, backend: b, session: sess, clip: clip}
}

func (f *fixture) login(t *testing.T, exp time.Time) {
	require.NoError(t, f.client.SetToken(qna.DevToken(2, "user", exp)))
}

func TestEncodeDecodeQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters ui.Filters
		page    int
		want    string
	}{
		{name: "defaults", want: "page=0"},
		{name: "keyword", filters: ui.Filters{Keyword: "refund"}, page: 2, want: "keyword=refund&page=2"},
		{name: "my posts", filters: ui.Filters{MyPostsOnly: true}, want: "myPostsOnly=true&page=0"},
		{
			name:    "all",
			filters: ui.Filters{Keyword: "a b", Category: qna.CategoryReport, AnswerStatus: qna.StatusPending, MyPostsOnly: true},
			page:    1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := EncodeQuery(tt.filters, tt.page)
			if tt.want != "" {
				assert.Equal(t, tt.want, q)
			}
			f, page := DecodeQuery(q)
			assert.Equal(t, tt.filters, f)
			assert.Equal(t, tt.page, page)
		})
	}
}

func TestDecodeQueryBadValues(t *testing.T) {
	f, page := DecodeQuery("page=-3&myPostsOnly=yes")
	assert.Equal(t, 0, page)
	assert.False(t, f.MyPostsOnly)

	_, page = DecodeQuery("page=abc")
	assert.Equal(t, 0, page)

	_, page = DecodeQuery("%zz")
	assert.Equal(t, 0, page)
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	h.Replace("page=0")
	assert.False(t, h.Save("page=0"))
	assert.True(t, h.Save("page=1"))
	assert.True(t, h.Save("page=2"))

	q, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, "page=1", q)

	assert.True(t, h.Save("keyword=x&page=0"), "saving drops forward entries")
	_, ok = h.Forward()
	assert.False(t, ok)
	assert.Equal(t, 3, h.Len())

	h.Back()
	q, _ = h.Back()
	assert.Equal(t, "page=0", q)
	_, ok = h.Back()
	assert.False(t, ok)
}

func TestHistorySeek(t *testing.T) {
	h := NewHistory()
	h.Replace("page=0")
	h.Save("page=1")
	h.Save("page=2")

	h.Seek("page=0")
	assert.Equal(t, "page=0", h.Current())
	assert.Equal(t, 3, h.Len())
	q, ok := h.Forward()
	require.True(t, ok)
	assert.Equal(t, "page=1", q)

	h.Seek("keyword=x&page=0")
	assert.Equal(t, "keyword=x&page=0", h.Current(), "unknown locations replace the entry")
	assert.Equal(t, 3, h.Len())
}

func TestNavigateThenBack(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	f.app.Start(ctx, "")
	require.True(t, f.ctrl.Search(ctx, "a"))
	require.True(t, f.ctrl.Search(ctx, "b"))
	require.Equal(t, 3, f.app.history.Len())

	f.app.Navigate(ctx, "keyword=a&page=0")
	assert.Equal(t, "keyword=a&page=0", f.app.history.Current())
	assert.Equal(t, "a", f.ctrl.State().Filters.Keyword)
	assert.False(t, f.app.LastNavigation().Push)

	require.True(t, f.app.Back(ctx))
	assert.Equal(t, "page=0", f.app.history.Current())
	assert.Empty(t, f.ctrl.State().Filters.Keyword)

	require.True(t, f.app.Forward(ctx))
	require.True(t, f.app.Forward(ctx))
	assert.Equal(t, "b", f.ctrl.State().Filters.Keyword)
}

func TestStartRestoresLocationAndTracksHistory(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	f.app.Start(ctx, "?page=2&keyword=refund")
	lists := f.backend.listQueries()
	require.Len(t, lists, 1)
	assert.Equal(t, "2", lists[0].Get("page"))
	assert.Equal(t, "refund", lists[0].Get("keyword"))
	assert.Equal(t, Navigation{Query: "keyword=refund&page=2", Push: false}, f.app.LastNavigation())

	require.True(t, f.ctrl.GoToPage(ctx, 3))
	assert.Equal(t, Navigation{Query: "keyword=refund&page=3", Push: true}, f.app.LastNavigation())

	require.True(t, f.app.Back(ctx))
	_, page := f.ctrl.Filters()
	assert.Equal(t, 2, page)
	assert.Equal(t, "2", f.backend.listQueries()[2].Get("page"))

	require.True(t, f.app.Forward(ctx))
	_, page = f.ctrl.Filters()
	assert.Equal(t, 3, page)

	f.app.Navigate(ctx, "category="+url.QueryEscape(qna.CategoryReport)+"&page=0")
	filters, _ := f.ctrl.Filters()
	assert.Equal(t, qna.CategoryReport, filters.Category)
	last := f.backend.listQueries()
	assert.Equal(t, qna.CategoryReport, last[len(last)-1].Get("category"))
}

func TestEscapeClosesTopmost(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	f.login(t, time.Now().Add(time.Hour))

	require.True(t, f.ctrl.OpenDetail(ctx, 1))
	require.True(t, f.ctrl.OpenPostModal(ctx, 0))
	f.ctrl.ConfirmDeletePost(1)

	esc := KeyEvent{Key: "Escape"}
	assert.True(t, f.app.HandleKey(ctx, esc).PreventDefault)
	assert.False(t, f.ctrl.ConfirmOpen())
	assert.True(t, f.ctrl.PostModalOpen())

	f.app.HandleKey(ctx, esc)
	assert.False(t, f.ctrl.PostModalOpen())
	assert.True(t, f.ctrl.DetailOpen())

	f.app.HandleKey(ctx, esc)
	assert.False(t, f.ctrl.DetailOpen())

	assert.False(t, f.app.HandleKey(ctx, esc).PreventDefault)
}

func TestShortcuts(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	res := f.app.HandleKey(ctx, KeyEvent{Key: "k", Meta: true})
	assert.True(t, res.FocusSearch)

	f.app.HandleKey(ctx, KeyEvent{Key: "r", Focus: "INPUT"})
	f.app.HandleKey(ctx, KeyEvent{Key: "r", Focus: "textarea"})
	f.app.HandleKey(ctx, KeyEvent{Key: "r", Ctrl: true})
	assert.Empty(t, f.backend.listQueries(), "suppressed shortcuts")

	assert.True(t, f.app.HandleKey(ctx, KeyEvent{Key: "r"}).PreventDefault)
	assert.Len(t, f.backend.listQueries(), 1)
	assert.Equal(t, "List refreshed.", f.ctrl.State().ToastMessage)

	f.app.HandleKey(ctx, KeyEvent{Key: "n"})
	assert.False(t, f.ctrl.PostModalOpen())
	assert.Equal(t, view.ToastWarning, f.ctrl.State().ToastType)

	f.login(t, time.Now().Add(time.Hour))
	f.app.HandleKey(ctx, KeyEvent{Key: "n", Focus: "select"})
	assert.False(t, f.ctrl.PostModalOpen())
	f.app.HandleKey(ctx, KeyEvent{Key: "n"})
	assert.True(t, f.ctrl.PostModalOpen())

	assert.True(t, f.app.HandleKey(ctx, KeyEvent{Key: "Enter", Ctrl: true}).PreventDefault)
	assert.True(t, f.ctrl.PostModalOpen(), "empty form is not submitted")
	assert.False(t, f.app.HandleKey(ctx, KeyEvent{Key: "Enter"}).PreventDefault)
}

func TestFocusTrap(t *testing.T) {
	confirm := view.Confirm(view.ConfirmView{Open: true, Title: "t", Message: "m"})
	nodes := Focusable(confirm)
	require.Len(t, nodes, 2)

	next, ok := FocusTrap(nodes, "confirmOk", false)
	require.True(t, ok)
	assert.Equal(t, "confirmCancel", next)

	next, ok = FocusTrap(nodes, "confirmCancel", true)
	require.True(t, ok)
	assert.Equal(t, "confirmOk", next)

	_, ok = FocusTrap(nodes, "confirmCancel", false)
	assert.False(t, ok)

	next, ok = FocusTrap(nodes, "searchInput", false)
	require.True(t, ok)
	assert.Equal(t, "confirmCancel", next)

	form := view.PostForm(view.PostFormView{Open: true, Submitting: true})
	ids := []string{}
	for _, n := range Focusable(form) {
		id, _ := view.Attr(n, "id")
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"postCategory", "postTitle", "postContent", "postLocked", "postImage", "cancelPost"}, ids)

	_, ok = FocusTrap(nil, "x", false)
	assert.False(t, ok)
}

func TestTabInsideOpenModal(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	assert.False(t, f.app.HandleKey(ctx, KeyEvent{Key: "Tab"}).PreventDefault)

	f.ctrl.Confirm("t", "m", func(context.Context) {})
	res := f.app.HandleKey(ctx, KeyEvent{Key: "Tab", FocusID: "confirmOk"})
	assert.True(t, res.PreventDefault)
	assert.Equal(t, "confirmCancel", res.Focus)
}

func TestVisibilityEvictsExpiredToken(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	f.login(t, time.Now().Add(-time.Minute))

	f.app.SetVisibility(ctx, true)
	assert.NotEmpty(t, f.client.Token(), "page was never hidden")

	f.app.SetVisibility(ctx, false)
	f.app.SetVisibility(ctx, true)
	assert.Empty(t, f.client.Token())
	s := f.ctrl.State()
	assert.Equal(t, view.ToastWarning, s.ToastType)
	assert.Contains(t, s.ToastMessage, "expired")
	assert.Len(t, f.backend.listQueries(), 1, "never loaded, so stale")
}

func TestVisibilityWithoutTokenDoesNotWarn(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	f.app.Start(ctx, "")
	f.app.SetVisibility(ctx, false)
	f.app.SetVisibility(ctx, true)

	assert.False(t, f.ctrl.State().ToastVisible)
	assert.Len(t, f.backend.listQueries(), 1, "fresh list is not reloaded")
}

func TestVisibilityReloadsStaleList(t *testing.T) {
	f := newFixture(t, Options{Now: func() time.Time { return time.Now().Add(10 * time.Minute) }})
	ctx := context.Background()

	f.app.Start(ctx, "")
	f.app.SetVisibility(ctx, false)
	f.app.SetVisibility(ctx, true)
	assert.Len(t, f.backend.listQueries(), 2)
}

func TestOnlineOffline(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	f.app.SetOnline(ctx, true)
	assert.False(t, f.ctrl.State().ToastVisible, "already online")

	f.app.SetOnline(ctx, false)
	assert.Equal(t, view.ToastWarning, f.ctrl.State().ToastType)
	assert.Empty(t, f.backend.listQueries())

	f.app.SetOnline(ctx, true)
	assert.Equal(t, view.ToastSuccess, f.ctrl.State().ToastType)
	assert.Len(t, f.backend.listQueries(), 1)
}

func TestScrollRestoredOnce(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	require.NoError(t, f.app.SaveScroll(420))
	f.app.Start(ctx, "")

	y, ok := f.app.TakeScroll()
	require.True(t, ok)
	assert.Equal(t, 420, y)
	_, ok = f.app.TakeScroll()
	assert.False(t, ok)

	_, err := f.session.Get(storage.ScrollPositionKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, f.app.SaveScroll(10))
	f.ctrl.LoadPosts(ctx)
	_, ok = f.app.TakeScroll()
	assert.False(t, ok, "only the first load restores")
}

func TestScrollNotRestoredOnLaterPage(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	require.NoError(t, f.app.SaveScroll(99))
	f.app.Start(ctx, "page=3")
	_, ok := f.app.TakeScroll()
	assert.False(t, ok)

	require.True(t, f.ctrl.GoToPage(ctx, 0))
	y, ok := f.app.TakeScroll()
	require.True(t, ok)
	assert.Equal(t, 99, y)
}

func TestScrollRestoredOnEveryPageLoad(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	f.app.Start(ctx, "")
	_, ok := f.app.TakeScroll()
	assert.False(t, ok)

	require.NoError(t, f.app.SaveScroll(420))
	f.app.Start(ctx, "")
	y, ok := f.app.TakeScroll()
	require.True(t, ok)
	assert.Equal(t, 420, y)

	require.NoError(t, f.app.SaveScroll(75))
	f.app.Start(ctx, "")
	y, ok = f.app.TakeScroll()
	require.True(t, ok)
	assert.Equal(t, 75, y)
}

func TestShareAndCopy(t *testing.T) {
	f := newFixture(t, Options{})
	f.ctrl.SetState(ui.Filters{Keyword: "refund"}, 1)

	assert.Equal(t, "http://localhost:8090/?keyword=refund&page=1", f.app.ShareLink())
	require.True(t, f.app.Share())
	assert.Equal(t, "http://localhost:8090/?keyword=refund&page=1", f.clip.text)
	assert.Equal(t, view.ToastSuccess, f.ctrl.State().ToastType)

	f.clip.err = errors.New("no clipboard")
	assert.False(t, f.app.Copy("x"))
	assert.Equal(t, view.ToastError, f.ctrl.State().ToastType)
}

func TestRenderMiddleware(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	f.app.Start(ctx, "")
	require.True(t, f.ctrl.OpenDetail(ctx, 7))

	regions := f.ctrl.Render(ui.RegionDetail, ui.RegionPosts, ui.RegionFilters)

	imgs := view.Find(regions[ui.RegionDetail], view.ByTag("img"))
	require.Len(t, imgs, 1)
	_, hasSrc := view.Attr(imgs[0], "src")
	assert.False(t, hasSrc)
	dataSrc, _ := view.Attr(imgs[0], "data-src")
	assert.Contains(t, dataSrc, "/uploads/p.png")
	loading, _ := view.Attr(imgs[0], "loading")
	assert.Equal(t, "lazy", loading)
	fallback, _ := view.Attr(imgs[0], "data-fallback")
	assert.Equal(t, brokenImage, fallback)

	items := view.Find(regions[ui.RegionPosts], view.ByClass("post-item"))
	require.Len(t, items, 1)
	label, _ := view.Attr(items[0], "aria-label")
	assert.Equal(t, "Post 1: First post", label)
	role, _ := view.Attr(items[0], "role")
	assert.Equal(t, "button", role)

	search := view.Find(regions[ui.RegionFilters], view.ByTag("input"))
	require.NotEmpty(t, search)
	aria, _ := view.Attr(search[0], "aria-label")
	assert.Equal(t, "Search posts", aria)
}

func TestSafeRecovers(t *testing.T) {
	f := newFixture(t, Options{})

	err := f.app.Safe("boom", func() { panic("kaboom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Equal(t, view.ToastError, f.ctrl.State().ToastType)

	assert.NoError(t, f.app.Safe("fine", func() {}))
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var mu sync.Mutex
	calls := 0
	for i := 0; i < 5; i++ {
		d.Trigger(func() {
			mu.Lock()
			calls++
			mu.Unlock()
		})
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, 5*time.Millisecond)

	d.Trigger(func() { t.Error("stopped call ran") })
	d.Stop()
	time.Sleep(40 * time.Millisecond)
}

func TestSearchInputDebounced(t *testing.T) {
	f := newFixture(t, Options{SearchDelay: 20 * time.Millisecond})

	f.app.SearchInput("r")
	f.app.SearchInput("re")
	f.app.SearchInput("refund")

	require.Eventually(t, func() bool { return len(f.backend.listQueries()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "refund", f.backend.listQueries()[0].Get("keyword"))

	require.True(t, f.app.SearchNow(context.Background(), "now"))
	assert.Equal(t, "now", f.backend.listQueries()[1].Get("keyword"))
}
