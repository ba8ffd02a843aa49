package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"guestbook/internal/httputil"
)

// Pinger checks that a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler builds the health check. redis may be nil.
func NewHealthHandler(db Pinger, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Check handles GET /health
// Returns 503 when the database is unreachable. Redis only degrades live
// updates, so its failure is reported but keeps the status at 200.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]string{"status": "ok", "database": "ok"}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		log.Printf("[Health] Database ping FAILED: %v", err)
		body["status"] = "unavailable"
		body["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		body["realtime"] = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			log.Printf("[Health] Redis ping FAILED: %v", err)
			body["realtime"] = "unreachable"
		}
	}

	httputil.WriteJSON(w, status, body)
}
