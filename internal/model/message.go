package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Message is a top-level guestbook post.
type Message struct {
	ID         string      `db:"id" json:"id"`
	Username   string      `db:"username" json:"username"`
	Content    string      `db:"content" json:"content"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	Likes      int         `db:"likes" json:"likes"`
	Attachment *Attachment `db:"-" json:"attachment,omitempty"`

	// Derived fields (not in messages table)
	Replies  []Reply `db:"-" json:"replies"`
	HasLiked bool    `db:"-" json:"has_liked"`
}

// Attachment is the optional file metadata stored on the message row.
type Attachment struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	Type       string `json:"type"`
	Key        string `json:"key,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// Reply is a response to exactly one message.
type Reply struct {
	ID        string    `db:"id" json:"id"`
	MessageID string    `db:"message_id" json:"message_id"`
	Username  string    `db:"username" json:"username"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LikeResult is the state of a message after a like toggle.
type LikeResult struct {
	Likes    int  `json:"likes"`
	HasLiked bool `json:"has_liked"`
}

// PageResult is one page of the enriched feed.
type PageResult struct {
	Items      []Message `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// Session carries the per-request caller context.
// Identity is the self-reported display name; empty means anonymous.
type Session struct {
	Identity string
}

// CreateMessageRequest is the request body for posting a message.
type CreateMessageRequest struct {
	Username   string      `json:"username"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// UpdateMessageRequest is the request body for editing a message.
type UpdateMessageRequest struct {
	Content string `json:"content"`
}

// CreateReplyRequest is the request body for replying to a message.
type CreateReplyRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// Feed defaults
const (
	DefaultPageSize         = 10
	DefaultMaxPageSize      = 50
	DefaultMaxContentLength = 200
	MaxUsernameLength       = 50
	DefaultPopularLimit     = 5
	MaxPopularLimit         = 50
)

// IsStorableText reports whether s fits a Postgres text column:
// valid UTF-8 without NUL bytes.
func IsStorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
