package qna

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
)

// Values encodes the params as a query string, dropping empty strings.
// page, size and myPostsOnly are always present.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	add := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	add("page", strconv.Itoa(p.Page))
	add("size", strconv.Itoa(p.Size))
	add("keyword", p.Keyword)
	add("category", p.Category)
	add("answerStatus", p.AnswerStatus)
	add("myPostsOnly", strconv.FormatBool(p.MyPostsOnly))
	return v
}

// ListPosts fetches a page of posts
func (c *Client) ListPosts(ctx context.Context, params ListParams) (*ListResponse, error) {
	url := c.baseURL + "?" + params.Values().Encode()

	var result ListResponse
	if err := c.request(ctx, http.MethodGet, url, nil, "", &result); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &result, nil
}

// GetPost fetches one post
func (c *Client) GetPost(ctx context.Context, id int64) (*Post, error) {
	url := fmt.Sprintf("%s/%d", c.baseURL, id)

	var post Post
	if err := c.request(ctx, http.MethodGet, url, nil, "", &post); err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return &post, nil
}

// CreatePost creates a post, uploading the image if one is given
func (c *Client) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	form := newForm()
	form.field("category", in.Category)
	form.field("title", in.Title)
	form.field("content", in.Content)
	form.field("isLocked", strconv.FormatBool(in.IsLocked))
	if in.Image != nil {
		form.file("imageFile", in.Image)
	}

	body, contentType, err := form.finish()
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	var post Post
	if err := c.request(ctx, http.MethodPost, c.baseURL, body, contentType, &post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// UpdatePost sends only the fields set in up
func (c *Client) UpdatePost(ctx context.Context, id int64, up PostUpdate) (*Post, error) {
	form := newForm()
	if up.Category != "" {
		form.field("category", up.Category)
	}
	if up.Title != "" {
		form.field("title", up.Title)
	}
	if up.Content != "" {
		form.field("content", up.Content)
	}
	if up.IsLocked != nil {
		form.field("isLocked", strconv.FormatBool(*up.IsLocked))
	}
	if up.DeleteImage {
		form.field("deleteImage", "true")
	}
	if up.Image != nil {
		form.file("imageFile", up.Image)
	}

	body, contentType, err := form.finish()
	if err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}

	url := fmt.Sprintf("%s/%d", c.baseURL, id)

	var post Post
	if err := c.request(ctx, http.MethodPut, url, body, contentType, &post); err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	return &post, nil
}

// DeletePost deletes a post and its replies
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	url := fmt.Sprintf("%s/%d", c.baseURL, id)
	if err := c.request(ctx, http.MethodDelete, url, nil, "", nil); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

// multipartForm accumulates fields and keeps the first write error
type multipartForm struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newForm() *multipartForm {
	f := &multipartForm{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *multipartForm) file(name string, img *ImageFile) {
	if f.err != nil {
		return
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, img.Name))
	h.Set("Content-Type", img.ContentType)

	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(img.Data)
}

func (f *multipartForm) finish() (*bytes.Buffer, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("build form: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &f.buf, f.w.FormDataContentType(), nil
}
