package qna

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Category and answer status values exactly as the server spells them
const (
	CategoryGeneral = "일반문의"
	CategoryReport  = "신고"

	StatusPending  = "답변대기"
	StatusAnswered = "답변완료"
)

// Categories lists every category in display order
var Categories = []string{CategoryGeneral, CategoryReport}

// AnswerStatuses lists every answer status in display order
var AnswerStatuses = []string{StatusPending, StatusAnswered}

// timestampLayouts are the formats the server uses for dates
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Timestamp is a server date in local time
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts any of the server's date layouts, or null
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON writes the server's long layout
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format("2006-01-02 15:04:05"))
}

// PostSummary is a post as it appears in the list
type PostSummary struct {
	QnaID        int64     `json:"qnaId"`
	UserNickname string    `json:"userNickname"`
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	IsLocked     bool      `json:"isLocked"`
	AnswerStatus string    `json:"answerStatus"`
	ViewCount    int       `json:"viewCount"`
	ReplyCount   int       `json:"replyCount"`
	IsOwner      bool      `json:"isOwner"`
	HasImage     bool      `json:"hasImage"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// Post is the full detail of a single post
type Post struct {
	QnaID        int64     `json:"qnaId"`
	UserPID      int64     `json:"userPid"`
	UserNickname string    `json:"userNickname"`
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ImagePath    string    `json:"imagePath"`
	IsLocked     bool      `json:"isLocked"`
	AnswerStatus string    `json:"answerStatus"`
	ViewCount    int       `json:"viewCount"`
	ReplyCount   int       `json:"replyCount"`
	IsOwner      bool      `json:"isOwner"`
	CreatedAt    Timestamp `json:"createdAt"`
	UpdatedAt    Timestamp `json:"updatedAt"`
	Replies      []Reply   `json:"replies,omitempty"`
}

// Reply is an admin answer to a post
type Reply struct {
	ReplyID       int64     `json:"replyId"`
	QnaID         int64     `json:"qnaId"`
	AdminUserPID  int64     `json:"adminUserPid"`
	AdminNickname string    `json:"adminNickname"`
	ReplyContent  string    `json:"replyContent"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// ListParams selects a page of posts. Empty strings are not sent.
type ListParams struct {
	Page         int
	Size         int
	Keyword      string
	Category     string
	AnswerStatus string
	MyPostsOnly  bool
}

// ListResponse is the paged list envelope
type ListResponse struct {
	Success       bool          `json:"success"`
	Message       string        `json:"message,omitempty"`
	Data          []PostSummary `json:"data"`
	TotalElements int64         `json:"totalElements"`
	CurrentPage   int           `json:"currentPage"`
	TotalPages    int           `json:"totalPages"`
	HasPrevious   bool          `json:"hasPrevious"`
	HasNext       bool          `json:"hasNext"`
}

// envelope is the common response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PostInput is the body of a new post
type PostInput struct {
	Category string
	Title    string
	Content  string
	IsLocked bool
	Image    *ImageFile
}

// PostUpdate carries only the fields being changed. Empty strings and a nil
// IsLocked leave the server value untouched.
type PostUpdate struct {
	Category    string
	Title       string
	Content     string
	IsLocked    *bool
	DeleteImage bool
	Image       *ImageFile
}

// IsEmpty reports whether the update would change nothing
func (u PostUpdate) IsEmpty() bool {
	return u.Category == "" && u.Title == "" && u.Content == "" &&
		u.IsLocked == nil && !u.DeleteImage && u.Image == nil
}

type replyBody struct {
	ReplyContent string `json:"replyContent"`
}
