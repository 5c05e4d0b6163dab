package view

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/renderinc/qna-board/internal/qna"
)

// PostFormView is the state of the create/edit modal
type PostFormView struct {
	Open       bool
	EditID     int64
	Category   string
	Title      string
	Content    string
	IsLocked   bool
	PreviewURL string
	Submitting bool
	Error      string
}

// PostForm renders the post modal
func PostForm(v PostFormView) *html.Node {
	modal := el("div", a("id", "postModal", "class", "modal", "role", "dialog", "aria-modal", "true"))
	if !v.Open {
		return modal
	}
	SetAttr(modal, "class", "modal show")

	heading, submitLabel := "New question", "Submit"
	if v.EditID != 0 {
		heading, submitLabel = "Edit question", "Save"
	}
	submitIcon := "fas fa-paper-plane"
	if v.Submitting {
		submitLabel, submitIcon = "Working...", "fas fa-spinner fa-spin"
	}

	category := el("select", a("id", "postCategory", "name", "category"))
	for _, c := range qna.Categories {
		opt := el("option", a("value", c), text(c))
		if c == v.Category {
			SetAttr(opt, "selected", "")
		}
		category.AppendChild(opt)
	}

	locked := el("input", a("id", "postLocked", "name", "isLocked", "type", "checkbox"))
	if v.IsLocked {
		SetAttr(locked, "checked", "")
	}

	form := el("form", a("id", "postForm", "data-action", "submit-post"),
		el("label", a("for", "postCategory"), text("Category")),
		category,
		el("label", a("for", "postTitle"), text("Title")),
		el("input", a("id", "postTitle", "name", "title", "type", "text", "value", v.Title,
			"maxlength", strconv.Itoa(MaxTitleLength), "required", "")),
		counter("titleCounter", v.Title, MaxTitleLength),
		el("label", a("for", "postContent"), text("Content")),
		el("textarea", a("id", "postContent", "name", "content",
			"maxlength", strconv.Itoa(MaxContentLength), "required", ""), text(v.Content)),
		counter("contentCounter", v.Content, MaxContentLength),
		el("label", a("class", "checkbox"), locked, text(" Private post")),
		el("input", a("id", "postImage", "name", "imageFile", "type", "file", "accept", "image/jpeg,image/png,image/webp")),
		imagePreview(v.PreviewURL),
	)

	if v.Error != "" {
		form.AppendChild(el("div", a("class", "form-error", "role", "alert"), text(v.Error)))
	}

	submit := a("id", "submitPost", "class", "btn btn-primary", "type", "submit")
	if v.Submitting {
		submit = append(submit, "disabled", "")
	}
	form.AppendChild(el("div", a("class", "modal-actions"),
		el("button", a("id", "cancelPost", "class", "btn btn-outline", "type", "button", "data-action", "close-post"), text("Cancel")),
		el("button", submit, icon(submitIcon), text(" "+submitLabel)),
	))

	modal.AppendChild(el("div", a("class", "modal-backdrop", "data-action", "close-post")))
	modal.AppendChild(el("div", a("class", "modal-content"),
		el("h2", nil, text(heading)),
		form,
	))
	return modal
}

func imagePreview(url string) *html.Node {
	box := el("div", a("id", "imagePreview", "class", "image-preview", "style", "display: none"))
	if url == "" {
		return box
	}
	SetAttr(box, "style", "display: block")
	box.AppendChild(el("img", a("id", "previewImg", "src", url, "alt", "Preview")))
	box.AppendChild(el("button", a("id", "removeImage", "class", "btn btn-small btn-danger", "type", "button", "data-action", "remove-image"),
		icon("fas fa-times"), text(" Remove")))
	return box
}

// ConfirmView is the destructive-action prompt
type ConfirmView struct {
	Open    bool
	Title   string
	Message string
}

// Confirm renders the confirmation dialog
func Confirm(v ConfirmView) *html.Node {
	modal := el("div", a("id", "confirmModal", "class", "modal confirm", "role", "alertdialog", "aria-modal", "true"))
	if !v.Open {
		return modal
	}
	SetAttr(modal, "class", "modal confirm show")
	modal.AppendChild(el("div", a("class", "modal-content"),
		el("h3", a("id", "confirmTitle"), text(v.Title)),
		el("p", a("id", "confirmMessage"), multiline(v.Message)...),
		el("div", a("class", "modal-actions"),
			el("button", a("id", "confirmCancel", "class", "btn btn-outline", "data-action", "confirm-cancel"), text("Cancel")),
			el("button", a("id", "confirmOk", "class", "btn btn-danger", "data-action", "confirm-ok"), text("OK")),
		),
	))
	return modal
}

// ToastType selects the banner color and icon
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
)

// Icon returns the icon class for the toast type
func (t ToastType) Icon() string {
	switch t {
	case ToastError:
		return "fas fa-exclamation-circle"
	case ToastWarning:
		return "fas fa-exclamation-triangle"
	default:
		return "fas fa-check-circle"
	}
}

// ToastView is the single notification banner
type ToastView struct {
	Visible bool
	Type    ToastType
	Message string
}

// Toast renders the notification banner
func Toast(v ToastView) *html.Node {
	typ := v.Type
	if typ == "" {
		typ = ToastSuccess
	}
	var show string
	if v.Visible {
		show = "show"
	}
	return el("div", a("id", "toast", "class", classes("toast", string(typ), show), "role", "status", "aria-live", "polite"),
		el("i", a("class", classes("toast-icon", typ.Icon()))),
		el("span", a("id", "toastMessage"), text(v.Message)),
	)
}

// SessionView gates the header controls on the current session
type SessionView struct {
	User        *qna.Session
	MyPostsOnly bool
}

// Header renders the user area: write button, my-posts toggle and login state
func Header(v SessionView) *html.Node {
	bar := el("div", a("id", "userArea", "class", "user-area"))
	if v.User == nil {
		bar.AppendChild(el("button", a("id", "loginBtn", "class", "btn btn-outline", "data-action", "login"),
			icon("fas fa-sign-in-alt"), text(" Log in")))
		return bar
	}

	toggle := el("input", a("id", "myPostsOnly", "type", "checkbox", "data-action", "filter"))
	if v.MyPostsOnly {
		SetAttr(toggle, "checked", "")
	}
	name := v.User.UserAccount
	if v.User.IsAdmin {
		name += " (admin)"
	}

	bar.AppendChild(el("button", a("id", "writeBtn", "class", "btn btn-primary", "data-action", "new-post"),
		icon("fas fa-pen"), text(" Ask a question")))
	bar.AppendChild(el("label", a("id", "myPostsLabel", "class", "checkbox"), toggle, text(" My posts only")))
	bar.AppendChild(el("span", a("class", "user-name"), icon("fas fa-user"), text(" "+name)))
	bar.AppendChild(el("button", a("id", "logoutBtn", "class", "btn btn-outline", "data-action", "logout"),
		icon("fas fa-sign-out-alt"), text(" Log out")))
	return bar
}
