package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change kinds, named after the SQL statement that produced them
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Tables that emit change events
const (
	TableMessages = "messages"
	TableReplies  = "replies"
	TableLikes    = "likes"
)

// Stream names
const (
	StreamChanges = "stream:changes"
)

// StreamMaxLen caps the change stream; subscribers only care about recent events.
const StreamMaxLen = 10000

// ChangeEvent describes one row-level change in the guestbook.
type ChangeEvent struct {
	Table      string `json:"table"`
	Event      string `json:"event"`
	AffectedID string `json:"affected_id"`

	// MessageID is the parent message for reply and like events.
	// For message events it equals AffectedID.
	MessageID string `json:"message_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessageEvent creates an event for an insert, update or delete of a message.
func NewMessageEvent(event, messageID string) ChangeEvent {
	return ChangeEvent{
		Table:      TableMessages,
		Event:      event,
		AffectedID: messageID,
		MessageID:  messageID,
		Timestamp:  time.Now().Unix(),
	}
}

// NewReplyEvent creates an event for a reply added to or removed from a message.
// messageID may be empty when the parent is unknown (reply delete).
func NewReplyEvent(event, replyID, messageID string) ChangeEvent {
	return ChangeEvent{
		Table:      TableReplies,
		Event:      event,
		AffectedID: replyID,
		MessageID:  messageID,
		Timestamp:  time.Now().Unix(),
	}
}

// NewLikeEvent creates an event for a like toggle. INSERT means liked, DELETE unliked.
func NewLikeEvent(messageID string, liked bool) ChangeEvent {
	event := EventDelete
	if liked {
		event = EventInsert
	}
	return ChangeEvent{
		Table:      TableLikes,
		Event:      event,
		AffectedID: messageID,
		MessageID:  messageID,
		Timestamp:  time.Now().Unix(),
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is serialized into a "data" field.
func (e ChangeEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"table": e.Table,
		"event": e.Event,
		"data":  string(data),
	}, nil
}

// ParseChangeEvent parses a ChangeEvent from Redis stream message values.
func ParseChangeEvent(values map[string]interface{}) (ChangeEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ChangeEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ChangeEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ChangeEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Table == "" || event.Event == "" {
		return ChangeEvent{}, fmt.Errorf("event missing table or kind")
	}
	return event, nil
}
