package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"guestbook/internal/model"
)

const messageColumns = `id, username, content, created_at, likes,
		file_name, file_url, file_size, file_type, file_key, file_preview_url`

// messageRow mirrors the messages table; attachment columns are nullable.
type messageRow struct {
	ID             string         `db:"id"`
	Username       string         `db:"username"`
	Content        string         `db:"content"`
	CreatedAt      time.Time      `db:"created_at"`
	Likes          int            `db:"likes"`
	FileName       sql.NullString `db:"file_name"`
	FileURL        sql.NullString `db:"file_url"`
	FileSize       sql.NullInt64  `db:"file_size"`
	FileType       sql.NullString `db:"file_type"`
	FileKey        sql.NullString `db:"file_key"`
	FilePreviewURL sql.NullString `db:"file_preview_url"`
}

func (r messageRow) toModel() model.Message {
	msg := model.Message{
		ID:        r.ID,
		Username:  r.Username,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		Likes:     r.Likes,
		Replies:   []model.Reply{},
	}
	if r.FileURL.Valid && r.FileURL.String != "" {
		msg.Attachment = &model.Attachment{
			Name:       r.FileName.String,
			URL:        r.FileURL.String,
			Size:       r.FileSize.Int64,
			Type:       r.FileType.String,
			Key:        r.FileKey.String,
			PreviewURL: r.FilePreviewURL.String,
		}
	}
	return msg
}

func toMessages(rows []messageRow) []model.Message {
	out := make([]model.Message, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a message and returns it with server-assigned id and timestamp.
func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	var name, url, fileType, key, preview sql.NullString
	var size sql.NullInt64
	if a := msg.Attachment; a != nil {
		name = nullString(a.Name)
		url = nullString(a.URL)
		size = sql.NullInt64{Int64: a.Size, Valid: true}
		fileType = nullString(a.Type)
		key = nullString(a.Key)
		preview = nullString(a.PreviewURL)
	}

	query := `
		INSERT INTO messages (username, content, file_name, file_url, file_size, file_type, file_key, file_preview_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + messageColumns

	var row messageRow
	err := r.db.GetContext(ctx, &row, query, msg.Username, msg.Content, name, url, size, fileType, key, preview)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	created := row.toModel()
	return &created, nil
}

// GetByID retrieves a single message without replies.
func (r *messageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	var row messageRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}

	msg := row.toModel()
	return &msg, nil
}

// UpdateContent rewrites a message's content. Other columns are untouched.
func (r *messageRepository) UpdateContent(ctx context.Context, id, content string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET content = $1 WHERE id = $2`, content, id)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrMessageNotFound
	}
	return nil
}

// Delete removes a message. Replies and likes are cascade-deleted by the DB.
func (r *messageRepository) Delete(ctx context.Context, id string) (*model.Message, error) {
	query := `DELETE FROM messages WHERE id = $1 RETURNING ` + messageColumns

	var row messageRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete message: %w", err)
	}

	deleted := row.toModel()
	return &deleted, nil
}

// Count returns the exact number of rows matching the search term.
func (r *messageRepository) Count(ctx context.Context, searchTerm string) (int, error) {
	where, args := searchClause(searchTerm, 1)

	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return total, nil
}

// List returns the window [offset, offset+limit) of the sorted, filtered feed.
func (r *messageRepository) List(ctx context.Context, q model.FeedQuery) ([]model.Message, error) {
	query, args, err := buildListQuery(q)
	if err != nil {
		return nil, err
	}

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return toMessages(rows), nil
}

// Popular returns the most liked messages, newest first among ties.
func (r *messageRepository) Popular(ctx context.Context, limit int) ([]model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		ORDER BY likes DESC, created_at DESC, id DESC
		LIMIT $1
	`
	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("popular messages: %w", err)
	}
	return toMessages(rows), nil
}

// Ping checks that the messages table is reachable.
func (r *messageRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1 FROM messages LIMIT 1`); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("ping messages: %w", err)
	}
	return nil
}
