package realtime

import (
	"log"
	"sync"

	"guestbook/internal/queue"
)

// Wildcard matches any table or event in a subscription.
const Wildcard = "*"

// ChangeFunc is called for every change matching a subscription.
// It runs on the dispatching goroutine and must not block.
type ChangeFunc func(table, event, affectedID string)

type subscription struct {
	table string
	event string
	fn    ChangeFunc
}

func (s subscription) matches(e queue.ChangeEvent) bool {
	return (s.table == Wildcard || s.table == e.Table) &&
		(s.event == Wildcard || s.event == e.Event)
}

// Hub fans change events out to in-process subscribers. Callers decide from
// (table, event, affectedID) whether their current view needs a refetch.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]subscription)}
}

// Subscribe registers fn for changes on table with kind event. Empty strings
// and "*" match anything. The returned func removes the subscription.
func (h *Hub) Subscribe(table, event string, fn ChangeFunc) (unsubscribe func()) {
	if table == "" {
		table = Wildcard
	}
	if event == "" {
		event = Wildcard
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = subscription{table: table, event: event, fn: fn}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish calls every matching subscriber and returns how many were called.
// A panicking subscriber is logged and does not affect the others.
func (h *Hub) Publish(e queue.ChangeEvent) int {
	h.mu.RLock()
	targets := make([]ChangeFunc, 0, len(h.subs))
	for _, s := range h.subs {
		if s.matches(e) {
			targets = append(targets, s.fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range targets {
		call(fn, e)
	}
	return len(targets)
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func call(fn ChangeFunc, e queue.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Subscriber panic: table=%s event=%s id=%s panic=%v", e.Table, e.Event, e.AffectedID, r)
		}
	}()
	fn(e.Table, e.Event, e.AffectedID)
}
