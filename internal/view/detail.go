package view

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/renderinc/qna-board/internal/qna"
)

// Length limits enforced by the server, shown as form counters
const (
	MaxTitleLength   = 255
	MaxContentLength = 5000
	MaxReplyLength   = 2000
)

// CanEditPost reports whether viewer may see edit and delete controls on p
func CanEditPost(p *qna.Post, viewer *qna.Session) bool {
	if p == nil || viewer == nil {
		return false
	}
	return p.IsOwner || viewer.IsAdmin
}

// CanReply reports whether viewer gets the reply composer
func CanReply(viewer *qna.Session) bool {
	return viewer != nil && viewer.IsAdmin
}

// CanEditReply reports whether viewer wrote r and may change it
func CanEditReply(r qna.Reply, viewer *qna.Session) bool {
	return CanReply(viewer) && viewer.UserID == r.AdminUserPID
}

// DetailView is the open post plus its replies and the composer state
type DetailView struct {
	Post    *qna.Post
	Replies []qna.Reply
	Viewer  *qna.Session
	Now     time.Time
	// ImageBase is prefixed to root-relative image paths
	ImageBase string

	ReplyDraft     string
	EditingReplyID int64
	ReplyBusy      bool
}

// Detail renders the detail modal. A nil post renders the hidden modal.
func Detail(v DetailView) *html.Node {
	modal := el("div", a("id", "detailModal", "class", "modal", "role", "dialog", "aria-modal", "true"))
	if v.Post == nil {
		return modal
	}
	SetAttr(modal, "class", "modal show")
	p := v.Post

	header := el("div", a("class", "detail-header"),
		el("span", a("id", "detailCategory", "class", classes("category-badge", p.Category)), text(p.Category)),
		el("span", a("id", "detailStatus", "class", classes("status-badge", p.AnswerStatus)), text(p.AnswerStatus)),
		el("span", a("id", "detailAuthor"), icon("fas fa-user"), text(" "+p.UserNickname)),
		el("span", a("id", "detailDate"), icon("fas fa-clock"), text(" "+FormatDate(p.CreatedAt.Time, v.Now))),
		el("span", a("id", "detailViews"), icon("fas fa-eye"), text(" "+strconv.Itoa(p.ViewCount))),
	)

	body := el("div", a("class", "modal-content"),
		el("button", a("id", "detailClose", "class", "modal-close", "data-action", "close-detail", "aria-label", "Close"), icon("fas fa-times")),
		header,
		el("h2", a("id", "detailTitle"), text(p.Title)),
		el("div", a("id", "detailContentText", "class", "detail-content"), multiline(p.Content)...),
	)

	if p.ImagePath != "" {
		body.AppendChild(el("div", a("id", "detailImage", "class", "detail-image"),
			el("img", a("id", "detailImg", "src", imageURL(v.ImageBase, p.ImagePath), "alt", p.Title)),
		))
	}

	if CanEditPost(p, v.Viewer) {
		id := strconv.FormatInt(p.QnaID, 10)
		body.AppendChild(el("div", a("class", "detail-actions"),
			el("button", a("id", "editPostBtn", "class", "btn btn-outline", "data-action", "edit-post", "data-post-id", id),
				icon("fas fa-edit"), text(" Edit")),
			el("button", a("id", "deletePostBtn", "class", "btn btn-danger", "data-action", "delete-post", "data-post-id", id),
				icon("fas fa-trash"), text(" Delete")),
		))
	}

	body.AppendChild(el("div", a("class", "replies-section"),
		el("h3", nil, icon("fas fa-comments"), text(" Replies")),
		Replies(v.Replies, v.Viewer, v.Now),
	))

	if CanReply(v.Viewer) {
		body.AppendChild(ReplyForm(v.ReplyDraft, v.EditingReplyID, v.ReplyBusy))
	}

	modal.AppendChild(el("div", a("class", "modal-backdrop", "data-action", "close-detail")))
	modal.AppendChild(body)
	return modal
}

// Replies renders the reply list, or the empty state when there are none
func Replies(replies []qna.Reply, viewer *qna.Session, now time.Time) *html.Node {
	list := el("div", a("id", "repliesList", "class", "replies-list"))
	if len(replies) == 0 {
		list.AppendChild(EmptyState(EmptyReplies))
		return list
	}
	for _, r := range replies {
		list.AppendChild(replyItem(r, viewer, now))
	}
	return list
}

func replyItem(r qna.Reply, viewer *qna.Session, now time.Time) *html.Node {
	id := strconv.FormatInt(r.ReplyID, 10)
	item := el("div", a("class", "reply-item", "data-reply-id", id),
		el("div", a("class", "reply-header"),
			el("span", a("class", "reply-author"), icon("fas fa-user-shield"), text(" "+r.AdminNickname)),
			el("span", a("class", "reply-date"), text(FormatDate(r.CreatedAt.Time, now))),
		),
		el("div", a("class", "reply-content"), multiline(r.ReplyContent)...),
	)
	if CanEditReply(r, viewer) {
		item.AppendChild(el("div", a("class", "reply-actions-inline"),
			el("button", a("id", "editReply-"+id, "class", "btn btn-small btn-outline", "data-action", "edit-reply", "data-reply-id", id),
				icon("fas fa-edit"), text(" Edit")),
			el("button", a("id", "deleteReply-"+id, "class", "btn btn-small btn-danger", "data-action", "delete-reply", "data-reply-id", id),
				icon("fas fa-trash"), text(" Delete")),
		))
	}
	return item
}

// ReplyForm renders the admin composer. A non-zero editingID switches it to
// update mode for that reply.
func ReplyForm(draft string, editingID int64, busy bool) *html.Node {
	label, iconClass, action := "Post reply", "fas fa-paper-plane", "submit-reply"
	if editingID != 0 {
		label, iconClass = "Update", "fas fa-save"
	}
	if busy {
		label, iconClass = "Working...", "fas fa-spinner fa-spin"
	}

	submit := a("id", "submitReply", "class", "btn btn-primary", "data-action", action)
	if editingID != 0 {
		submit = append(submit, "data-reply-id", strconv.FormatInt(editingID, 10))
	}
	if busy {
		submit = append(submit, "disabled", "")
	}

	form := el("div", a("id", "replyForm", "class", "reply-form"),
		el("textarea", a("id", "replyContent", "name", "replyContent", "maxlength", strconv.Itoa(MaxReplyLength),
			"placeholder", "Write a reply"), text(draft)),
		counter("replyCounter", draft, MaxReplyLength),
		el("button", submit, icon(iconClass), text(" "+label)),
	)
	if editingID != 0 {
		form.AppendChild(el("button", a("id", "cancelReplyEdit", "class", "btn btn-outline", "data-action", "cancel-reply-edit"),
			text("Cancel")))
	}
	return form
}

func counter(id, value string, limit int) *html.Node {
	return el("div", a("class", "char-counter"),
		el("span", a("id", id), text(strconv.Itoa(utf8.RuneCountInString(value)))),
		text("/"+strconv.Itoa(limit)),
	)
}

// multiline keeps line breaks of plain text
func multiline(s string) []*html.Node {
	var out []*html.Node
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out = append(out, el("br", nil))
		}
		if line != "" {
			out = append(out, text(line))
		}
	}
	return out
}

func imageURL(base, path string) string {
	if strings.HasPrefix(path, "/") {
		return strings.TrimSuffix(base, "/") + path
	}
	return path
}
