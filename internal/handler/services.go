package handler

import (
	"context"

	"guestbook/internal/model"
)

// FeedReader serves the read side of the guestbook.
type FeedReader interface {
	FetchPage(ctx context.Context, session model.Session, opts model.FetchOptions) (*model.PageResult, error)
	GetPopular(ctx context.Context, limit int) ([]model.Message, error)
	GetMessage(ctx context.Context, session model.Session, id string) (*model.Message, error)
	Ping(ctx context.Context) error
}

// MessageWriter mutates messages and likes.
type MessageWriter interface {
	Create(ctx context.Context, username, content string, attachment *model.Attachment) (*model.Message, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, messageID, identity string) (*model.LikeResult, error)
}

// ReplyManager adds, removes and lists replies.
type ReplyManager interface {
	Add(ctx context.Context, messageID, username, content string) (*model.Reply, error)
	Delete(ctx context.Context, replyID string) error
	ListByMessage(ctx context.Context, messageID string) ([]model.Reply, error)
}

// AttachmentStore uploads and removes attachment files.
type AttachmentStore interface {
	Upload(ctx context.Context, in model.UploadInput, onProgress model.ProgressFunc) (*model.Attachment, error)
	Delete(ctx context.Context, key string) error
}

// StatsReader serves the summary counters and the activity chart.
type StatsReader interface {
	Summary(ctx context.Context) (*model.Stats, error)
	Activity(ctx context.Context, days int) ([]model.DailyActivity, error)
}
