package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"guestbook/internal/metrics"
	"guestbook/internal/queue"
)

// Dispatcher delivers a change to local subscribers and reports how many received it.
// realtime.Hub implements it.
type Dispatcher interface {
	Publish(event queue.ChangeEvent) int
}

// Handler processes change events from the queue.
type Handler struct {
	dispatcher Dispatcher
}

// NewHandler creates a new event handler.
func NewHandler(dispatcher Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// HandleEvent validates a change event and hands it to the dispatcher.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ChangeEvent) error {
	startTime := time.Now()

	switch event.Table {
	case queue.TableMessages, queue.TableReplies, queue.TableLikes:
	default:
		log.Printf("[Worker] Unknown table: %s", event.Table)
		return fmt.Errorf("unknown table: %s", event.Table)
	}
	switch event.Event {
	case queue.EventInsert, queue.EventUpdate, queue.EventDelete:
	default:
		log.Printf("[Worker] Unknown event: %s", event.Event)
		return fmt.Errorf("unknown event: %s", event.Event)
	}

	delivered := h.dispatcher.Publish(event)
	metrics.ChangeEvents.WithLabelValues(event.Table, event.Event, "dispatched").Inc()

	log.Printf("[Worker] HandleEvent OK: table=%s event=%s id=%s subscribers=%d duration=%v",
		event.Table, event.Event, event.AffectedID, delivered, time.Since(startTime))
	return nil
}
