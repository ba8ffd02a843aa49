package service

import (
	"context"
	"log"
	"time"

	"guestbook/internal/model"
	"guestbook/internal/repository"
)

type StatsService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats, now: time.Now}
}

// Summary returns total messages, messages posted today (UTC) and total replies.
func (s *StatsService) Summary(ctx context.Context) (*model.Stats, error) {
	stats, err := s.stats.Summary(ctx, startOfDay(s.now()))
	if err != nil {
		log.Printf("[StatsService] Summary FAILED: err=%v", err)
		return nil, queryError("stats summary", err)
	}
	return stats, nil
}

// Activity returns daily message and reply counts for the last days days,
// today included, oldest first.
func (s *StatsService) Activity(ctx context.Context, days int) ([]model.DailyActivity, error) {
	if days <= 0 {
		days = model.DefaultActivityDays
	}
	if days > model.MaxActivityDays {
		days = model.MaxActivityDays
	}

	from := startOfDay(s.now()).AddDate(0, 0, -(days - 1))
	activity, err := s.stats.DailyActivity(ctx, from, days)
	if err != nil {
		log.Printf("[StatsService] Activity FAILED: days=%d err=%v", days, err)
		return nil, queryError("daily activity", err)
	}
	return activity, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
