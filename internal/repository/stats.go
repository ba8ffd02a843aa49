package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"guestbook/internal/model"
)

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Summary(ctx context.Context, dayStart time.Time) (*model.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM messages) AS total_messages,
			(SELECT COUNT(*) FROM messages WHERE created_at >= $1) AS today_messages,
			(SELECT COUNT(*) FROM replies) AS total_replies
	`
	var stats model.Stats
	if err := r.db.GetContext(ctx, &stats, query, dayStart); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &stats, nil
}

// DailyActivity buckets messages and replies by UTC day. Days without any
// activity are still present with zero counts.
func (r *statsRepository) DailyActivity(ctx context.Context, from time.Time, days int) ([]model.DailyActivity, error) {
	query := `
		WITH days AS (
			SELECT generate_series(
				date_trunc('day', $1::timestamptz AT TIME ZONE 'UTC'),
				date_trunc('day', $1::timestamptz AT TIME ZONE 'UTC') + ($2 - 1) * INTERVAL '1 day',
				INTERVAL '1 day'
			) AS day
		)
		SELECT
			d.day AT TIME ZONE 'UTC' AS day,
			(SELECT COUNT(*) FROM messages m
			  WHERE m.created_at >= d.day AT TIME ZONE 'UTC'
			    AND m.created_at < (d.day + INTERVAL '1 day') AT TIME ZONE 'UTC') AS messages,
			(SELECT COUNT(*) FROM replies rp
			  WHERE rp.created_at >= d.day AT TIME ZONE 'UTC'
			    AND rp.created_at < (d.day + INTERVAL '1 day') AT TIME ZONE 'UTC') AS replies
		FROM days d
		ORDER BY d.day ASC
	`
	activity := []model.DailyActivity{}
	if err := r.db.SelectContext(ctx, &activity, query, from, days); err != nil {
		return nil, fmt.Errorf("get daily activity: %w", err)
	}
	return activity, nil
}
