package model

import "time"

// Stats is the guestbook summary shown next to the feed.
type Stats struct {
	TotalMessages int `db:"total_messages" json:"total_messages"`
	TodayMessages int `db:"today_messages" json:"today_messages"`
	TotalReplies  int `db:"total_replies" json:"total_replies"`
}

// DailyActivity counts messages and replies created on one calendar day (UTC).
type DailyActivity struct {
	Date     time.Time `db:"day" json:"date"`
	Messages int       `db:"messages" json:"messages"`
	Replies  int       `db:"replies" json:"replies"`
}

// Activity window bounds
const (
	DefaultActivityDays = 7
	MaxActivityDays     = 30
)
