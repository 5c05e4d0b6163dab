package qna

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// AdminAccount is the account name that carries admin rights
const AdminAccount = "admin"

// Session is what the client reads out of its bearer token.
//
// The token is decoded without verifying its signature. A Session only
// decides what the UI shows; the server enforces every permission.
type Session struct {
	UserID      int64
	UserAccount string
	IsAdmin     bool
	ExpiresAt   time.Time
}

type tokenPayload struct {
	UserID      json.RawMessage `json:"userId"`
	UserAccount string          `json:"userAccount"`
	Exp         int64           `json:"exp"`
}

// DecodeToken reads the session out of the payload segment of token
func DecodeToken(token string) (*Session, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, errors.New("token has no payload segment")
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var p tokenPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	userID, err := parseUserID(p.UserID)
	if err != nil {
		return nil, err
	}

	return &Session{
		UserID:      userID,
		UserAccount: p.UserAccount,
		IsAdmin:     p.UserAccount == AdminAccount,
		ExpiresAt:   time.Unix(p.Exp, 0),
	}, nil
}

// decodeSegment accepts base64url with or without padding, and standard
// base64 for hand-built development tokens.
func decodeSegment(seg string) ([]byte, error) {
	seg = strings.TrimRight(seg, "=")
	if b, err := base64.RawURLEncoding.DecodeString(seg); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(seg)
}

func parseUserID(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	s := strings.Trim(string(raw), `"`)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("userId %s: %w", raw, err)
	}
	return id, nil
}

// DevToken builds an unsigned token for local development and tests
func DevToken(userID int64, account string, exp time.Time) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"userId":      userID,
		"userAccount": account,
		"exp":         exp.Unix(),
	})
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".signature"
}

// CurrentUser decodes the stored token. A token that cannot be decoded is
// removed and nil is returned.
func (c *Client) CurrentUser() *Session {
	token := c.Token()
	if token == "" {
		return nil
	}

	s, err := DecodeToken(token)
	if err != nil {
		log.Printf("qna: token decode failed: %v", err)
		c.RemoveToken()
		return nil
	}
	return s
}

// IsTokenExpired is true when there is no usable session or its expiry is
// not in the future
func (c *Client) IsTokenExpired() bool {
	s := c.CurrentUser()
	if s == nil {
		return true
	}
	return !s.ExpiresAt.After(c.now())
}

// IsLoggedIn reports whether a valid, unexpired token is present
func (c *Client) IsLoggedIn() bool {
	return c.Token() != "" && !c.IsTokenExpired()
}

// IsAdmin reports whether the current session belongs to the admin account
func (c *Client) IsAdmin() bool {
	s := c.CurrentUser()
	return s != nil && s.IsAdmin
}
