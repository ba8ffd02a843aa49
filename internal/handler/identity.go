package handler

import (
	"encoding/json"
	"net/http"

	"guestbook/internal/httputil"
	"guestbook/internal/identity"
	"guestbook/internal/transport/http/middleware"
)

type IdentityHandler struct {
	store identity.Store
}

func NewIdentityHandler(store identity.Store) *IdentityHandler {
	return &IdentityHandler{store: store}
}

type identityBody struct {
	Name string `json:"name"`
}

// Get handles GET /identity
// Returns the remembered display name, empty when anonymous.
func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, identityBody{Name: session.Identity})
}

// Set handles PUT /identity
func (h *IdentityHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req identityBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	name, err := identity.NormalizeName(req.Name)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	if err := h.store.Save(w, name); err != nil {
		logUnexpected("Set identity handler", err)
		httputil.WriteServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, identityBody{Name: name})
}
