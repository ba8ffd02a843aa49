package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"guestbook/internal/realtime"
)

const (
	eventBuffer       = 32
	heartbeatInterval = 25 * time.Second
)

// Subscriber is the part of the realtime hub the events stream needs.
type Subscriber interface {
	Subscribe(table, event string, fn realtime.ChangeFunc) (unsubscribe func())
}

type EventsHandler struct {
	hub       Subscriber
	heartbeat time.Duration
}

func NewEventsHandler(hub Subscriber) *EventsHandler {
	return &EventsHandler{hub: hub, heartbeat: heartbeatInterval}
}

// changeNotice is the SSE payload; clients refetch what they display.
type changeNotice struct {
	Table string `json:"table"`
	Event string `json:"event"`
	ID    string `json:"id"`
}

// Stream handles GET /events?table=&event=
// Streams change notifications as Server-Sent Events until the client leaves.
// A slow client misses notices instead of blocking the hub.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	q := r.URL.Query()

	notices := make(chan changeNotice, eventBuffer)
	unsubscribe := h.hub.Subscribe(q.Get("table"), q.Get("event"), func(table, event, affectedID string) {
		select {
		case notices <- changeNotice{Table: table, Event: event, ID: affectedID}:
		default:
			log.Printf("[Events] Dropped notice for slow client: table=%s event=%s id=%s", table, event, affectedID)
		}
	})
	defer unsubscribe()

	// The stream outlives the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		log.Printf("[ERROR] Events stream: flushing unsupported: %v", err)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case n := <-notices:
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
