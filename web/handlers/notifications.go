package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/scrypster/banyan/internal/auth"
	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/pkg/types"
)

// NotificationHandlers serves the notification inbox.
type NotificationHandlers struct {
	store storage.NotificationStore
}

// NewNotificationHandlers creates a NotificationHandlers instance.
func NewNotificationHandlers(store storage.NotificationStore) *NotificationHandlers {
	return &NotificationHandlers{store: store}
}

// ListNotifications handles GET /api/notifications?state=UNREAD&limit=N.
func (h *NotificationHandlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var state types.NotificationState
	switch r.URL.Query().Get("state") {
	case "":
	case "UNREAD":
		state = types.NotificationUnread
	case "READ":
		state = types.NotificationRead
	default:
		respondError(w, http.StatusBadRequest, "invalid state filter", nil)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), storage.DefaultNotificationLimit)
	list, err := h.store.ListNotifications(r.Context(), personID, state, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}
	if list == nil {
		list = []*types.Notification{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": list})
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	id := r.PathValue("id")
	n, err := h.store.GetNotification(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "notification not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load notification", err)
		return
	}
	if n.PersonID != personID {
		respondError(w, http.StatusForbidden, "not your notification", nil)
		return
	}

	if err := h.store.MarkNotificationRead(r.Context(), id, time.Now().UTC()); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to mark notification read", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	n, err := h.store.MarkAllNotificationsRead(r.Context(), personID, time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to mark notifications read", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"updated": n})
}
