package service

import (
	"context"
	"log"

	"guestbook/internal/metrics"
	"guestbook/internal/queue"
)

// changeNotifier publishes change events best effort. A nil publisher disables it.
type changeNotifier struct {
	publisher queue.Publisher
}

func (n changeNotifier) notify(ctx context.Context, event queue.ChangeEvent) {
	if n.publisher == nil {
		return
	}
	msgID, err := n.publisher.Publish(ctx, queue.StreamChanges, event)
	if err != nil {
		// The write already happened; subscribers catch up on the next change
		log.Printf("[Notifier] Failed to publish change: table=%s event=%s id=%s err=%v",
			event.Table, event.Event, event.AffectedID, err)
		metrics.ChangeEvents.WithLabelValues(event.Table, event.Event, "publish_failed").Inc()
		return
	}
	metrics.ChangeEvents.WithLabelValues(event.Table, event.Event, "published").Inc()
	log.Printf("[Notifier] Published change: table=%s event=%s id=%s msgID=%s",
		event.Table, event.Event, event.AffectedID, msgID)
}
