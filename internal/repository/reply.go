package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"guestbook/internal/model"
)

type replyRepository struct {
	db *sqlx.DB
}

func NewReplyRepository(db *sqlx.DB) ReplyRepository {
	return &replyRepository{db: db}
}

// Create inserts a reply. A missing parent message surfaces as ErrMessageNotFound.
func (r *replyRepository) Create(ctx context.Context, messageID, username, content string) (*model.Reply, error) {
	query := `
		INSERT INTO replies (message_id, username, content)
		VALUES ($1, $2, $3)
		RETURNING id, message_id, username, content, created_at
	`
	var reply model.Reply
	err := r.db.GetContext(ctx, &reply, query, messageID, username, content)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolated) {
			return nil, model.ErrMessageNotFound
		}
		return nil, fmt.Errorf("insert reply: %w", err)
	}
	return &reply, nil
}

// Delete removes a single reply.
func (r *replyRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM replies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete reply: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListByMessage returns all replies of a message, oldest first.
func (r *replyRepository) ListByMessage(ctx context.Context, messageID string) ([]model.Reply, error) {
	query := `
		SELECT id, message_id, username, content, created_at
		FROM replies
		WHERE message_id = $1
		ORDER BY created_at ASC, id ASC
	`
	replies := []model.Reply{}
	if err := r.db.SelectContext(ctx, &replies, query, messageID); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}
