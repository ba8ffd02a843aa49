package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"guestbook/internal/httputil"
	"guestbook/internal/model"
	"guestbook/internal/transport/http/middleware"
)

type ReplyHandler struct {
	replies ReplyManager
}

func NewReplyHandler(replies ReplyManager) *ReplyHandler {
	return &ReplyHandler{replies: replies}
}

// List handles GET /messages/{id}/replies
// Replies come back oldest first.
func (h *ReplyHandler) List(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "id")

	replies, err := h.replies.ListByMessage(r.Context(), messageID)
	if err != nil {
		logUnexpected("List replies handler: message="+messageID, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": replies,
	})
}

// Create handles POST /messages/{id}/replies
func (h *ReplyHandler) Create(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "id")

	var req model.CreateReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	username := req.Username
	if strings.TrimSpace(username) == "" {
		username = middleware.SessionFromContext(r.Context()).Identity
	}

	reply, err := h.replies.Add(r.Context(), messageID, username, req.Content)
	if err != nil {
		logUnexpected("Create reply handler: message="+messageID, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, reply)
}

// Delete handles DELETE /replies/{id}
func (h *ReplyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	replyID := chi.URLParam(r, "id")

	if err := h.replies.Delete(r.Context(), replyID); err != nil {
		logUnexpected("Delete reply handler: reply="+replyID, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Reply deleted successfully",
	})
}
