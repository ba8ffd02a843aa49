package handler

import (
	"net/http"

	"guestbook/internal/httputil"
)

type StatsHandler struct {
	stats StatsReader
}

func NewStatsHandler(stats StatsReader) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Summary handles GET /stats
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Summary(r.Context())
	if err != nil {
		logUnexpected("Stats summary handler", err)
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// Activity handles GET /stats/activity?days=7
func (h *StatsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r.URL.Query(), "days", 0)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	activity, err := h.stats.Activity(r.Context(), days)
	if err != nil {
		logUnexpected("Stats activity handler", err)
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"days": activity,
	})
}
