package ui

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/renderinc/qna-board/internal/qna"
	"github.com/renderinc/qna-board/internal/view"
)

// lockedPostMessage is the server's message for a locked post
const lockedPostMessage = "잠긴 게시글"

// OpenDetail shows post id, then loads its replies
func (c *Controller) OpenDetail(ctx context.Context, id int64) bool {
	c.mu.Lock()
	c.detailSeq++
	seq := c.detailSeq
	c.mu.Unlock()

	post, err := c.api.GetPost(ctx, id)

	c.mu.Lock()
	if seq != c.detailSeq {
		c.mu.Unlock()
		return false
	}
	if err != nil {
		log.Printf("ui: open post %d: %v", id, err)
		if isLocked(err) {
			c.showToastLocked("This post is locked.", view.ToastWarning)
		} else {
			c.showToastLocked("Failed to load the post.", view.ToastError)
		}
		c.mu.Unlock()
		return false
	}
	c.detail = DetailState{Post: post, Replies: post.Replies}
	c.mu.Unlock()

	c.LoadReplies(ctx, id)
	return true
}

func isLocked(err error) bool {
	var he *qna.HTTPError
	if !errors.As(err, &he) {
		return false
	}
	return he.Status == http.StatusForbidden || strings.Contains(he.Message, lockedPostMessage)
}

// CloseDetail hides the detail and drops any response still on its way
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detailSeq++
	c.repliesSeq++
	c.detail = DetailState{}
}

// DetailOpen reports whether a post detail is showing
func (c *Controller) DetailOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail.Post != nil
}

// LoadReplies refreshes the replies of the open post. Failures are logged
// and leave the current replies in place.
func (c *Controller) LoadReplies(ctx context.Context, postID int64) bool {
	c.mu.Lock()
	c.repliesSeq++
	seq := c.repliesSeq
	c.mu.Unlock()

	replies, err := c.api.ListReplies(ctx, postID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.repliesSeq || c.detail.Post == nil || c.detail.Post.QnaID != postID {
		return false
	}
	if err != nil {
		log.Printf("ui: load replies of %d: %v", postID, err)
		return false
	}
	c.detail.Replies = replies

	post := *c.detail.Post
	post.ReplyCount = len(replies)
	post.AnswerStatus = qna.StatusPending
	if len(replies) > 0 {
		post.AnswerStatus = qna.StatusAnswered
	}
	c.detail.Post = &post
	return true
}

// EditPost leaves the detail and opens the post modal for id
func (c *Controller) EditPost(ctx context.Context, id int64) bool {
	c.CloseDetail()
	return c.OpenPostModal(ctx, id)
}

// SetReplyDraft replaces the composer text
func (c *Controller) SetReplyDraft(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail.ReplyDraft = s
}

// EditReply loads reply id into the composer and switches it to update mode
func (c *Controller) EditReply(replyID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.detail.Replies {
		if r.ReplyID == replyID {
			c.detail.EditingReplyID = replyID
			c.detail.ReplyDraft = r.ReplyContent
			return true
		}
	}
	return false
}

// CancelReplyEdit returns the composer to create mode
func (c *Controller) CancelReplyEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail.EditingReplyID = 0
	c.detail.ReplyDraft = ""
}

// SubmitReply posts the composer text as a new reply, or as the update of the
// reply being edited. Replies and the post list are reloaded afterwards.
func (c *Controller) SubmitReply(ctx context.Context) bool {
	if !view.CanReply(c.user()) {
		c.Toast("Only administrators can reply.", view.ToastWarning)
		return false
	}

	c.mu.Lock()
	if c.detail.Post == nil || c.detail.ReplyBusy {
		c.mu.Unlock()
		return false
	}
	content := strings.TrimSpace(c.detail.ReplyDraft)
	if content == "" {
		c.showToastLocked("Please enter a reply.", view.ToastWarning)
		c.mu.Unlock()
		return false
	}
	c.detail.ReplyBusy = true
	postID, editing := c.detail.Post.QnaID, c.detail.EditingReplyID
	c.mu.Unlock()

	var err error
	if editing != 0 {
		_, err = c.api.UpdateReply(ctx, editing, content)
	} else {
		_, err = c.api.CreateReply(ctx, postID, content)
	}

	c.mu.Lock()
	c.detail.ReplyBusy = false
	if err != nil {
		log.Printf("ui: save reply on %d: %v", postID, err)
		c.showToastLocked(errorMessage(err, "Failed to save the reply."), view.ToastError)
		c.mu.Unlock()
		return false
	}
	if c.detail.Post != nil && c.detail.Post.QnaID == postID {
		c.detail.ReplyDraft = ""
		c.detail.EditingReplyID = 0
	}
	if editing != 0 {
		c.showToastLocked("Reply updated.", view.ToastSuccess)
	} else {
		c.showToastLocked("Reply posted.", view.ToastSuccess)
	}
	c.mu.Unlock()

	c.LoadReplies(ctx, postID)
	c.LoadPosts(ctx)
	return true
}

// ConfirmDeletePost asks before deleting post id
func (c *Controller) ConfirmDeletePost(id int64) {
	c.Confirm("Delete post", "Delete this post?\nA deleted post cannot be restored.", func(ctx context.Context) {
		c.DeletePost(ctx, id)
	})
}

// ConfirmDeleteReply asks before deleting reply id
func (c *Controller) ConfirmDeleteReply(id int64) {
	c.Confirm("Delete reply", "Delete this reply?\nA deleted reply cannot be restored.", func(ctx context.Context) {
		c.DeleteReply(ctx, id)
	})
}

// DeletePost deletes post id, closes its detail and reloads the list. Use
// ConfirmDeletePost from user actions.
func (c *Controller) DeletePost(ctx context.Context, id int64) bool {
	if err := c.api.DeletePost(ctx, id); err != nil {
		log.Printf("ui: delete post %d: %v", id, err)
		c.Toast(errorMessage(err, "Failed to delete the post."), view.ToastError)
		return false
	}

	c.mu.Lock()
	if c.detail.Post != nil && c.detail.Post.QnaID == id {
		c.detailSeq++
		c.repliesSeq++
		c.detail = DetailState{}
	}
	c.showToastLocked("Post deleted.", view.ToastSuccess)
	c.mu.Unlock()

	c.LoadPosts(ctx)
	return true
}

// DeleteReply deletes reply id and reloads the open post's replies and the
// list. Use ConfirmDeleteReply from user actions.
func (c *Controller) DeleteReply(ctx context.Context, id int64) bool {
	if err := c.api.DeleteReply(ctx, id); err != nil {
		log.Printf("ui: delete reply %d: %v", id, err)
		c.Toast(errorMessage(err, "Failed to delete the reply."), view.ToastError)
		return false
	}

	c.mu.Lock()
	var postID int64
	if c.detail.Post != nil {
		postID = c.detail.Post.QnaID
	}
	if c.detail.EditingReplyID == id {
		c.detail.EditingReplyID = 0
		c.detail.ReplyDraft = ""
	}
	c.showToastLocked("Reply deleted.", view.ToastSuccess)
	c.mu.Unlock()

	if postID != 0 {
		c.LoadReplies(ctx, postID)
	}
	c.LoadPosts(ctx)
	return true
}
