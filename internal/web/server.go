package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/renderinc/qna-board/internal/bootstrap"
	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/ui"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// maxUpload bounds the multipart body of an image selection
const maxUpload = 16 << 20

type Server struct {
	app       *bootstrap.App
	ctrl      *ui.Controller
	apiURL    string
	templates *template.Template
}

// Event is the body of every /ui request. Each action reads the fields it
// needs.
type Event struct {
	ID           int64  `json:"id"`
	Page         int    `json:"page"`
	Query        string `json:"query"`
	Keyword      string `json:"keyword"`
	Immediate    bool   `json:"immediate"`
	Category     string `json:"category"`
	AnswerStatus string `json:"answerStatus"`
	MyPostsOnly  bool   `json:"myPostsOnly"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	IsLocked     bool   `json:"isLocked"`
	Token        string `json:"token"`
	Visible      bool   `json:"visible"`
	Online       bool   `json:"online"`
	Y            int    `json:"y"`

	Key bootstrap.KeyEvent `json:"keyEvent"`
}

// Response carries the re-rendered page regions plus whatever the page has
// to do next
type Response struct {
	OK         bool                 `json:"ok"`
	Error      string               `json:"error,omitempty"`
	Regions    map[ui.Region]string `json:"regions"`
	Nav        bootstrap.Navigation `json:"nav"`
	Scroll     *int                 `json:"scroll,omitempty"`
	Key        *bootstrap.KeyResult `json:"key,omitempty"`
	Validation *qna.Validation      `json:"validation,omitempty"`
	Link       string               `json:"link,omitempty"`
}

type action func(ctx context.Context, ev Event, res *Response)

func NewServer(app *bootstrap.App, apiURL string) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}

	return &Server{
		app:       app,
		ctrl:      app.Controller(),
		apiURL:    apiURL,
		templates: tmpl,
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS)))
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(ui.DefaultPreviewPrefix+"{id}", s.handlePreview).Methods(http.MethodGet)
	r.HandleFunc("/ui/regions", s.handleRegions).Methods(http.MethodGet)
	r.HandleFunc("/ui/post/file", s.handleFile).Methods(http.MethodPost)

	ev := r.PathPrefix("/ui").Methods(http.MethodPost).Subrouter()
	for path, fn := range s.actions() {
		ev.Handle(path, s.event(fn))
	}
	return r
}

func (s *Server) actions() map[string]action {
	c, app := s.ctrl, s.app
	return map[string]action{
		"/load": func(ctx context.Context, ev Event, res *Response) { res.OK = c.LoadPosts(ctx) },
		"/page": func(ctx context.Context, ev Event, res *Response) { res.OK = c.GoToPage(ctx, ev.Page) },
		"/search": func(ctx context.Context, ev Event, res *Response) {
			if ev.Immediate {
				res.OK = app.SearchNow(ctx, ev.Keyword)
				return
			}
			app.SearchInput(ev.Keyword)
			res.OK = true
		},
		"/filter": func(ctx context.Context, ev Event, res *Response) {
			res.OK = c.ChangeFilters(ctx, ev.Category, ev.AnswerStatus, ev.MyPostsOnly)
		},
		"/reset": func(ctx context.Context, ev Event, res *Response) { res.OK = c.ResetFilters(ctx) },

		"/post/open":  func(ctx context.Context, ev Event, res *Response) { res.OK = c.OpenPostModal(ctx, ev.ID) },
		"/post/close": func(ctx context.Context, ev Event, res *Response) { c.ClosePostModal(); res.OK = true },
		"/post/form": func(ctx context.Context, ev Event, res *Response) {
			c.SetForm(ui.PostForm{Category: ev.Category, Title: ev.Title, Content: ev.Content, IsLocked: ev.IsLocked})
			res.OK = true
		},
		"/post/remove-image": func(ctx context.Context, ev Event, res *Response) { c.RemoveImage(); res.OK = true },
		"/post/submit":       func(ctx context.Context, ev Event, res *Response) { res.OK = c.SubmitPost(ctx) },

		"/detail/open":  func(ctx context.Context, ev Event, res *Response) { res.OK = c.OpenDetail(ctx, ev.ID) },
		"/detail/close": func(ctx context.Context, ev Event, res *Response) { c.CloseDetail(); res.OK = true },
		"/detail/edit":  func(ctx context.Context, ev Event, res *Response) { res.OK = c.EditPost(ctx, ev.ID) },

		"/reply/draft":  func(ctx context.Context, ev Event, res *Response) { c.SetReplyDraft(ev.Content); res.OK = true },
		"/reply/edit":   func(ctx context.Context, ev Event, res *Response) { res.OK = c.EditReply(ev.ID) },
		"/reply/cancel": func(ctx context.Context, ev Event, res *Response) { c.CancelReplyEdit(); res.OK = true },
		"/reply/submit": func(ctx context.Context, ev Event, res *Response) { res.OK = c.SubmitReply(ctx) },

		"/confirm/delete-post":  func(ctx context.Context, ev Event, res *Response) { c.ConfirmDeletePost(ev.ID); res.OK = true },
		"/confirm/delete-reply": func(ctx context.Context, ev Event, res *Response) { c.ConfirmDeleteReply(ev.ID); res.OK = true },
		"/confirm/ok":           func(ctx context.Context, ev Event, res *Response) { res.OK = c.ConfirmOK(ctx) },
		"/confirm/cancel":       func(ctx context.Context, ev Event, res *Response) { c.CancelConfirm(); res.OK = true },
		"/toast/hide":           func(ctx context.Context, ev Event, res *Response) { c.HideToast(); res.OK = true },

		"/key": func(ctx context.Context, ev Event, res *Response) {
			k := app.HandleKey(ctx, ev.Key)
			res.Key = &k
			res.OK = true
		},
		"/visibility": func(ctx context.Context, ev Event, res *Response) { app.SetVisibility(ctx, ev.Visible); res.OK = true },
		"/online":     func(ctx context.Context, ev Event, res *Response) { app.SetOnline(ctx, ev.Online); res.OK = true },
		"/scroll": func(ctx context.Context, ev Event, res *Response) {
			if err := app.SaveScroll(ev.Y); err != nil {
				res.Error = err.Error()
				return
			}
			res.OK = true
		},
		"/share": func(ctx context.Context, ev Event, res *Response) {
			res.Link = app.ShareLink()
			res.OK = app.Share()
		},

		"/login": func(ctx context.Context, ev Event, res *Response) {
			if err := c.Login(ctx, strings.TrimSpace(ev.Token)); err != nil {
				res.Error = err.Error()
				return
			}
			res.OK = true
		},
		"/logout": func(ctx context.Context, ev Event, res *Response) { c.Logout(ctx); res.OK = true },

		"/back":     func(ctx context.Context, ev Event, res *Response) { res.OK = app.Back(ctx) },
		"/forward":  func(ctx context.Context, ev Event, res *Response) { res.OK = app.Forward(ctx) },
		"/navigate": func(ctx context.Context, ev Event, res *Response) { app.Navigate(ctx, ev.Query); res.OK = true },
	}
}

// event decodes the request, runs fn and answers with the page state
func (s *Server) event(fn action) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&ev); err != nil && err != io.EOF {
				http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
				return
			}
		}

		var res Response
		// Follow-up reloads outlive the request
		ctx := context.WithoutCancel(r.Context())
		if err := s.app.Safe(r.URL.Path, func() { fn(ctx, ev, &res) }); err != nil {
			res.Error = err.Error()
		}
		s.respond(w, &res)
	})
}

func (s *Server) respond(w http.ResponseWriter, res *Response) {
	res.Regions = s.ctrl.RenderHTML()
	res.Nav = s.app.LastNavigation()
	if y, ok := s.app.TakeScroll(); ok {
		res.Scroll = &y
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	s.respond(w, &Response{OK: true})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, fmt.Sprintf("Invalid upload: %v", err), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("imageFile")
	if err != nil {
		http.Error(w, "Missing imageFile", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading upload: %v", err), http.StatusBadRequest)
		return
	}

	v := s.ctrl.SelectFile(qna.NewImageFile(header.Filename, data))
	s.respond(w, &Response{OK: v.IsValid, Validation: &v})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ctrl.Previews().Get(mux.Vars(r)["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(f.Data)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// A page load restores the list from its address
	s.app.Start(context.WithoutCancel(r.Context()), r.URL.RawQuery)

	regions := make(map[string]template.HTML)
	for region, markup := range s.ctrl.RenderHTML() {
		regions[string(region)] = template.HTML(markup)
	}

	data := map[string]interface{}{
		"Regions": regions,
		"APIURL":  s.apiURL,
	}
	if y, ok := s.app.TakeScroll(); ok {
		data["Scroll"] = y
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("Error rendering template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sess := s.ctrl.Session()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"api_url":   s.apiURL,
		"logged_in": sess != nil && !s.ctrl.IsTokenExpired(),
		"previews":  s.ctrl.Previews().Len(),
	})
}
