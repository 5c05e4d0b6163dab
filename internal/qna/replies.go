package qna

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListReplies fetches the replies of a post, oldest first
func (c *Client) ListReplies(ctx context.Context, postID int64) ([]Reply, error) {
	url := fmt.Sprintf("%s/%d/replies", c.baseURL, postID)

	var replies []Reply
	if err := c.request(ctx, http.MethodGet, url, nil, "", &replies); err != nil {
		return nil, fmt.Errorf("list replies of %d: %w", postID, err)
	}
	return replies, nil
}

// CreateReply answers a post. Only admins may do this; the server enforces it.
func (c *Client) CreateReply(ctx context.Context, postID int64, content string) (*Reply, error) {
	url := fmt.Sprintf("%s/%d/replies", c.baseURL, postID)

	var reply Reply
	if err := c.sendReply(ctx, http.MethodPost, url, content, &reply); err != nil {
		return nil, fmt.Errorf("create reply on %d: %w", postID, err)
	}
	return &reply, nil
}

// UpdateReply replaces the content of a reply
func (c *Client) UpdateReply(ctx context.Context, replyID int64, content string) (*Reply, error) {
	url := fmt.Sprintf("%s/replies/%d", c.baseURL, replyID)

	var reply Reply
	if err := c.sendReply(ctx, http.MethodPut, url, content, &reply); err != nil {
		return nil, fmt.Errorf("update reply %d: %w", replyID, err)
	}
	return &reply, nil
}

// DeleteReply removes a reply
func (c *Client) DeleteReply(ctx context.Context, replyID int64) error {
	url := fmt.Sprintf("%s/replies/%d", c.baseURL, replyID)
	if err := c.request(ctx, http.MethodDelete, url, nil, "", nil); err != nil {
		return fmt.Errorf("delete reply %d: %w", replyID, err)
	}
	return nil
}

func (c *Client) sendReply(ctx context.Context, method, url, content string, out *Reply) error {
	data, err := json.Marshal(replyBody{ReplyContent: content})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.request(ctx, method, url, bytes.NewReader(data), "", out)
}
