package repository

import (
	"context"
	"time"

	"guestbook/internal/model"
)

type MessageRepository interface {
	// Create inserts a message (attachment columns included) and returns the stored row.
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)
	GetByID(ctx context.Context, id string) (*model.Message, error)
	// UpdateContent changes only the content column.
	UpdateContent(ctx context.Context, id, content string) error
	// Delete removes a message; replies and likes go with it (ON DELETE CASCADE).
	// Returns the removed row, or nil if there was nothing to delete.
	Delete(ctx context.Context, id string) (*model.Message, error)
	// Count returns the exact number of messages matching the search term.
	Count(ctx context.Context, searchTerm string) (int, error)
	// List returns one window of messages ordered by the query's sort.
	List(ctx context.Context, q model.FeedQuery) ([]model.Message, error)
	// Popular returns the top messages by likes, without enrichment.
	Popular(ctx context.Context, limit int) ([]model.Message, error)
	Ping(ctx context.Context) error
}

type ReplyRepository interface {
	Create(ctx context.Context, messageID, username, content string) (*model.Reply, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// ListByMessage returns replies oldest first.
	ListByMessage(ctx context.Context, messageID string) ([]model.Reply, error)
}

type LikeRepository interface {
	// Toggle flips the (message, username) like row and applies a relative
	// +1/-1 to the message counter in the same transaction.
	Toggle(ctx context.Context, messageID, username string) (*model.LikeResult, error)
	HasLiked(ctx context.Context, messageID, username string) (bool, error)
}

type StatsRepository interface {
	// Summary counts messages, messages created since dayStart, and replies.
	Summary(ctx context.Context, dayStart time.Time) (*model.Stats, error)
	// DailyActivity returns one entry per day in [from, from+days).
	DailyActivity(ctx context.Context, from time.Time, days int) ([]model.DailyActivity, error)
}
