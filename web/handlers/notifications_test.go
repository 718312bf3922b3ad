package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/banyan/internal/storage/sqlite"
	"github.com/scrypster/banyan/pkg/types"
)

func seedNotification(t *testing.T, st *sqlite.Store, id, personID string) {
	t.Helper()
	require.NoError(t, st.CreateNotification(context.Background(), &types.Notification{
		ID:       id,
		PersonID: personID,
		Type:     types.NotifyRelationRequest,
		Title:    "New Relation Request",
		Message:  "Ramesh has added you as काका",
	}))
}

func TestListNotifications(t *testing.T) {
	st := newTestStore(t)
	seedPerson(t, st, "per:me", "9000000001", "Suresh")
	seedNotification(t, st, "ntf:1", "per:me")
	seedNotification(t, st, "ntf:2", "per:me")
	h := NewNotificationHandlers(st)

	req := authedRequest(t, http.MethodGet, "/api/notifications?state=UNREAD", "per:me", nil)
	w := httptest.NewRecorder()
	h.ListNotifications(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notifications []*types.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Notifications, 2)
}

func TestListNotifications_BadState(t *testing.T) {
	st := newTestStore(t)
	h := NewNotificationHandlers(st)

	req := authedRequest(t, http.MethodGet, "/api/notifications?state=WEIRD", "per:me", nil)
	w := httptest.NewRecorder()
	h.ListNotifications(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkRead_OwnerOnly(t *testing.T) {
	st := newTestStore(t)
	seedPerson(t, st, "per:me", "9000000001", "Suresh")
	seedNotification(t, st, "ntf:1", "per:me")
	h := NewNotificationHandlers(st)

	req := authedRequest(t, http.MethodPost, "/api/notifications/ntf:1/read", "per:other", nil)
	req.SetPathValue("id", "ntf:1")
	w := httptest.NewRecorder()
	h.MarkRead(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = authedRequest(t, http.MethodPost, "/api/notifications/ntf:1/read", "per:me", nil)
	req.SetPathValue("id", "ntf:1")
	w = httptest.NewRecorder()
	h.MarkRead(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	n, err := st.GetNotification(context.Background(), "ntf:1")
	require.NoError(t, err)
	assert.Equal(t, types.NotificationRead, n.State)
}

func TestMarkAllRead(t *testing.T) {
	st := newTestStore(t)
	seedPerson(t, st, "per:me", "9000000001", "Suresh")
	seedNotification(t, st, "ntf:1", "per:me")
	seedNotification(t, st, "ntf:2", "per:me")
	h := NewNotificationHandlers(st)

	req := authedRequest(t, http.MethodPost, "/api/notifications/read-all", "per:me", nil)
	w := httptest.NewRecorder()
	h.MarkAllRead(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["updated"])
}
