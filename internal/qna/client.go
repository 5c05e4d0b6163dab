package qna

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/renderinc/qna-board/internal/storage"
)

// BasePath is where the QnA resource lives on the API host
const BasePath = "/api/qna"

// HTTPError is a non-successful API response
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Client is a QnA API client. It owns the bearer token.
type Client struct {
	baseURL    string
	durable    storage.Store
	session    storage.Store
	httpClient *http.Client

	mu    sync.RWMutex
	token string
	now   func() time.Time
}

// NewClient creates a client for the API at host (scheme and authority, e.g.
// http://localhost:8080). The token is read from durable storage first and
// session storage second.
func NewClient(host string, durable, session storage.Store) *Client {
	c := &Client{
		baseURL: strings.TrimRight(host, "/") + BasePath,
		durable: durable,
		session: session,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
	c.token = c.tokenFromStorage()
	return c
}

func (c *Client) tokenFromStorage() string {
	for _, s := range []storage.Store{c.durable, c.session} {
		if s == nil {
			continue
		}
		token, err := s.Get(storage.TokenKey)
		if err == nil && token != "" {
			return token
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("qna: read token: %v", err)
		}
	}
	return ""
}

// BaseURL returns the resource root, e.g. http://host/api/qna
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the current bearer token, or "" when logged out
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken stores token in durable storage and uses it for later requests
func (c *Client) SetToken(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if c.durable == nil {
		return nil
	}
	if err := c.durable.Set(storage.TokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// RemoveToken forgets the token and erases it from both storages
func (c *Client) RemoveToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	for _, s := range []storage.Store{c.durable, c.session} {
		if s == nil {
			continue
		}
		if err := s.Delete(storage.TokenKey); err != nil {
			log.Printf("qna: remove token: %v", err)
		}
	}
}

// request performs an API call and decodes the envelope into out.
// contentType is empty for JSON requests.
func (c *Client) request(ctx context.Context, method, url string, body io.Reader, contentType string, out interface{}) error {
	err := c.do(ctx, method, url, body, contentType, out)
	if err != nil {
		log.Printf("qna: %s %s failed: %v", method, url, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if !ok {
			return &HTTPError{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
		}
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if !ok || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return &HTTPError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}

	// List responses carry paging fields beside data, so they decode whole.
	if lr, isList := out.(*ListResponse); isList {
		if err := json.Unmarshal(data, lr); err != nil {
			return fmt.Errorf("unmarshal list: %w", err)
		}
		return nil
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}
