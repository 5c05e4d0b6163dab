package ui

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/view"
)

const msgLoginRequired = "Please log in first."

// OpenPostModal opens the post modal: an empty form when editID is zero,
// otherwise the form pre-filled from that post. It requires a session.
func (c *Controller) OpenPostModal(ctx context.Context, editID int64) bool {
	if c.user() == nil {
		c.Toast(msgLoginRequired, view.ToastWarning)
		return false
	}

	c.mu.Lock()
	c.releasePreviewLocked()
	if editID == 0 {
		c.setModalLocked(ModalState{Mode: ModalCreate, Form: defaultForm()})
		c.mu.Unlock()
		return true
	}
	seq := c.setModalLocked(ModalState{Mode: ModalEdit, EditID: editID})
	c.mu.Unlock()

	post, err := c.api.GetPost(ctx, editID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.modalSeq {
		return false
	}
	if err != nil {
		log.Printf("ui: load post %d for edit: %v", editID, err)
		c.setModalLocked(ModalState{})
		c.showToastLocked("Failed to load the post.", view.ToastError)
		return false
	}
	c.modal.Original = post
	c.modal.Form = PostForm{
		Category: post.Category,
		Title:    post.Title,
		Content:  post.Content,
		IsLocked: post.IsLocked,
	}
	if post.ImagePath != "" {
		c.modal.PreviewURL = c.imageURL(post.ImagePath)
	}
	return true
}

func defaultForm() PostForm {
	return PostForm{Category: qna.CategoryGeneral, IsLocked: true}
}

// ClosePostModal cancels the modal, resetting the form and releasing any
// staged preview
func (c *Controller) ClosePostModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releasePreviewLocked()
	c.setModalLocked(ModalState{})
}

// setModalLocked replaces the modal and starts a new generation. Results of
// calls made for an older generation are not applied to it.
func (c *Controller) setModalLocked(m ModalState) uint64 {
	c.modalSeq++
	c.modal = m
	return c.modalSeq
}

// PostModalOpen reports whether the post modal is showing
func (c *Controller) PostModalOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal.Mode != ModalClosed
}

// SetForm replaces the form fields of the open modal
func (c *Controller) SetForm(f PostForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal.Mode == ModalClosed {
		return
	}
	c.modal.Form = f
}

// SelectFile validates f and stages it on the open modal. On failure the
// previous selection is kept and every violation is shown.
func (c *Controller) SelectFile(f *qna.ImageFile) qna.Validation {
	v := c.api.ValidateFile(f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal.Mode == ModalClosed {
		return qna.Validation{Errors: []string{"The post form is not open."}}
	}
	if !v.IsValid {
		c.showToastLocked(strings.Join(v.Errors, "\n"), view.ToastError)
		return v
	}
	c.releasePreviewLocked()
	c.modal.Image = f
	c.modal.PreviewURL = c.opts.Previews.Create(f)
	c.modal.RemoveImage = false
	return v
}

// RemoveImage clears the staged image. In edit mode a post that had an image
// gets it deleted on submit.
func (c *Controller) RemoveImage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releasePreviewLocked()
	c.modal.Image = nil
	c.modal.PreviewURL = ""
	if c.modal.Mode == ModalEdit && c.modal.Original != nil && c.modal.Original.ImagePath != "" {
		c.modal.RemoveImage = true
	}
}

// releasePreviewLocked revokes the staged preview, if any. Existing post
// images are not previews and are left alone.
func (c *Controller) releasePreviewLocked() {
	if c.modal.Image != nil && c.modal.PreviewURL != "" {
		c.opts.Previews.Revoke(c.modal.PreviewURL)
	}
}

// SubmitPost creates or updates the post in the open modal. On success the
// list reloads and the modal closes, unless it was closed or reopened in
// the meantime; on failure the modal stays open with the server's message.
func (c *Controller) SubmitPost(ctx context.Context) bool {
	if c.user() == nil {
		c.Toast(msgLoginRequired, view.ToastWarning)
		return false
	}

	c.mu.Lock()
	if c.modal.Mode == ModalClosed || c.modal.Submitting {
		c.mu.Unlock()
		return false
	}
	form := c.modal.Form
	form.Title = strings.TrimSpace(form.Title)
	form.Content = strings.TrimSpace(form.Content)
	if form.Title == "" || form.Content == "" {
		c.modal.Error = "Title and content are required."
		c.showToastLocked(c.modal.Error, view.ToastWarning)
		c.mu.Unlock()
		return false
	}
	c.modal.Submitting = true
	c.modal.Error = ""
	m := c.modal
	seq := c.modalSeq
	c.mu.Unlock()

	var err error
	if m.Mode == ModalCreate {
		_, err = c.api.CreatePost(ctx, qna.PostInput{
			Category: form.Category,
			Title:    form.Title,
			Content:  form.Content,
			IsLocked: form.IsLocked,
			Image:    m.Image,
		})
	} else {
		_, err = c.api.UpdatePost(ctx, m.EditID, editUpdate(m.Original, form, m.Image, m.RemoveImage))
	}

	if err != nil {
		log.Printf("ui: save post: %v", err)
		c.mu.Lock()
		if seq == c.modalSeq {
			c.modal.Submitting = false
			c.modal.Error = errorMessage(err, "Failed to save the post.")
			c.showToastLocked(c.modal.Error, view.ToastError)
		}
		c.mu.Unlock()
		return false
	}

	c.mu.Lock()
	if seq == c.modalSeq {
		c.releasePreviewLocked()
		c.setModalLocked(ModalState{})
		if m.Mode == ModalCreate {
			c.showToastLocked("Post created.", view.ToastSuccess)
		} else {
			c.showToastLocked("Post updated.", view.ToastSuccess)
		}
	}
	c.mu.Unlock()

	c.LoadPosts(ctx)
	return true
}

// editUpdate diffs the form against the loaded post. isLocked is always
// sent; unchanged text fields are left out so the server keeps them.
func editUpdate(orig *qna.Post, f PostForm, img *qna.ImageFile, removeImage bool) qna.PostUpdate {
	locked := f.IsLocked
	up := qna.PostUpdate{IsLocked: &locked, Image: img}
	if orig == nil {
		up.Category, up.Title, up.Content = f.Category, f.Title, f.Content
	} else {
		if f.Category != orig.Category {
			up.Category = f.Category
		}
		if f.Title != orig.Title {
			up.Title = f.Title
		}
		if f.Content != orig.Content {
			up.Content = f.Content
		}
	}
	if img == nil && removeImage {
		up.DeleteImage = true
	}
	return up
}

// errorMessage is the server message of an API error, or fallback
func errorMessage(err error, fallback string) string {
	var he *qna.HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	return fallback
}

func (c *Controller) imageURL(path string) string {
	if strings.HasPrefix(path, "/") {
		return strings.TrimSuffix(c.opts.ImageBase, "/") + path
	}
	return path
}
