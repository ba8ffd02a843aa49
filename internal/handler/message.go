package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"guestbook/internal/httputil"
	"guestbook/internal/identity"
	"guestbook/internal/model"
	"guestbook/internal/transport/http/middleware"
)

type MessageHandler struct {
	feed     FeedReader
	messages MessageWriter
	identity identity.Store
}

func NewMessageHandler(feed FeedReader, messages MessageWriter, identityStore identity.Store) *MessageHandler {
	return &MessageHandler{
		feed:     feed,
		messages: messages,
		identity: identityStore,
	}
}

// List handles GET /messages
// Returns one page of the feed, enriched with replies and the caller's like status.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parseFetchOptions(r.URL.Query())
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	session := middleware.SessionFromContext(r.Context())
	result, err := h.feed.FetchPage(r.Context(), session, opts)
	if err != nil {
		logUnexpected("List messages handler", err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Popular handles GET /messages/popular
func (h *MessageHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", 0)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	items, err := h.feed.GetPopular(r.Context(), limit)
	if err != nil {
		logUnexpected("Popular messages handler", err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// Get handles GET /messages/{id}
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session := middleware.SessionFromContext(r.Context())

	msg, err := h.feed.GetMessage(r.Context(), session, id)
	if err != nil {
		logUnexpected("Get message handler: message="+id, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, msg)
}

// Create handles POST /messages
// The author falls back to the session identity; the identity cookie is
// refreshed with whatever name the message was posted under.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	username := req.Username
	if strings.TrimSpace(username) == "" {
		username = middleware.SessionFromContext(r.Context()).Identity
	}

	msg, err := h.messages.Create(r.Context(), username, req.Content, req.Attachment)
	if err != nil {
		logUnexpected("Create message handler: user="+username, err)
		httputil.WriteServiceError(w, err)
		return
	}

	if h.identity != nil {
		if err := h.identity.Save(w, msg.Username); err != nil {
			log.Printf("[WARN] Refresh identity cookie failed: user=%s err=%v", msg.Username, err)
		}
	}

	httputil.WriteJSON(w, http.StatusCreated, msg)
}

// Update handles PATCH /messages/{id}
func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.messages.Update(r.Context(), id, req.Content); err != nil {
		logUnexpected("Update message handler: message="+id, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Message updated successfully",
	})
}

// Delete handles DELETE /messages/{id}
// Deleting a message that is already gone succeeds.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.messages.Delete(r.Context(), id); err != nil {
		logUnexpected("Delete message handler: message="+id, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Message deleted successfully",
	})
}

// ToggleLike handles POST /messages/{id}/like
// Likes or unlikes the message as the session identity.
func (h *MessageHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session := middleware.SessionFromContext(r.Context())

	result, err := h.messages.ToggleLike(r.Context(), id, session.Identity)
	if err != nil {
		logUnexpected("Toggle like handler: message="+id, err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
