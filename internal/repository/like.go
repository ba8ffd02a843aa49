package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"guestbook/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the like row if it exists, otherwise inserts it. The counter
// moves relative to its current value so concurrent toggles never lose updates.
func (r *likeRepository) Toggle(ctx context.Context, messageID, username string) (*model.LikeResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE message_id = $1 AND username = $2`, messageID, username)
	if err != nil {
		return nil, fmt.Errorf("delete like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}

	delta := -1
	hasLiked := false
	if removed == 0 {
		hasLiked = true
		result, err = tx.ExecContext(ctx, `
			INSERT INTO likes (message_id, username) VALUES ($1, $2)
			ON CONFLICT (message_id, username) DO NOTHING
		`, messageID, username)
		if err != nil {
			if isPQCode(err, pqForeignKeyViolated) {
				return nil, model.ErrMessageNotFound
			}
			return nil, fmt.Errorf("insert like: %w", err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("get rows affected: %w", err)
		}
		// A concurrent toggle by the same identity already inserted the row
		delta = 0
		if inserted > 0 {
			delta = 1
		}
	}

	likes, err := applyLikeDelta(ctx, tx, messageID, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.LikeResult{Likes: likes, HasLiked: hasLiked}, nil
}

func applyLikeDelta(ctx context.Context, tx *sqlx.Tx, messageID string, delta int) (int, error) {
	var likes int
	var err error
	if delta == 0 {
		err = tx.GetContext(ctx, &likes, `SELECT likes FROM messages WHERE id = $1`, messageID)
	} else {
		err = tx.GetContext(ctx, &likes, `
			UPDATE messages SET likes = GREATEST(likes + $1, 0)
			WHERE id = $2
			RETURNING likes
		`, delta, messageID)
	}
	if err == sql.ErrNoRows {
		return 0, model.ErrMessageNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update like count: %w", err)
	}
	return likes, nil
}

// HasLiked reports whether username has a like row on the message.
func (r *likeRepository) HasLiked(ctx context.Context, messageID, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE message_id = $1 AND username = $2)`,
		messageID, username)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}
