package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/banyan/internal/auth"
	"github.com/scrypster/banyan/internal/storage/sqlite"
	"github.com/scrypster/banyan/pkg/types"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newTokenManager(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager("test-secret", time.Hour)
	require.NoError(t, err)
	return m
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestCheckPhone(t *testing.T) {
	st := newTestStore(t)
	h := NewAuthHandlers(st, newTokenManager(t))

	require.NoError(t, st.StorePerson(context.Background(), &types.Person{
		ID: "per:1", Phone: "9876543210", FirstName: "Suresh", ProfileCompleted: true,
	}))

	w := postJSON(t, h.CheckPhone, "/api/auth/check-phone", map[string]string{"phone": "+91 98765 43210"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["exists"])
	assert.Equal(t, true, resp["profile_completed"])

	w = postJSON(t, h.CheckPhone, "/api/auth/check-phone", map[string]string{"phone": "9000000000"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["exists"])
}

func TestCheckPhone_InvalidPhone(t *testing.T) {
	h := NewAuthHandlers(newTestStore(t), newTokenManager(t))

	w := postJSON(t, h.CheckPhone, "/api/auth/check-phone", map[string]string{"phone": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_NewPerson(t *testing.T) {
	st := newTestStore(t)
	tokens := newTokenManager(t)
	h := NewAuthHandlers(st, tokens)

	w := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"phone":         "9876543210",
		"first_name":    "Suresh",
		"last_name":     "Patil",
		"gender":        "male",
		"date_of_birth": "1975-06-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.Person)
	assert.True(t, resp.Person.ProfileCompleted)
	assert.Equal(t, types.GenderMale, resp.Person.Gender)

	// The token authenticates as the new person.
	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Person.ID, claims.Subject)
}

func TestRegister_ClaimsStub(t *testing.T) {
	st := newTestStore(t)
	h := NewAuthHandlers(st, newTokenManager(t))

	stub := &types.Person{ID: "per:stub", Phone: "9876543210", FirstName: "Aai"}
	require.NoError(t, st.StorePerson(context.Background(), stub))

	w := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"phone":      "9876543210",
		"first_name": "Sunita",
		"gender":     "female",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "per:stub", resp.Person.ID, "claiming must keep the stub's identity")
	assert.Equal(t, "Sunita", resp.Person.FirstName)
	assert.True(t, resp.Person.ProfileCompleted)
}

func TestRegister_ConflictOnClaimedPhone(t *testing.T) {
	st := newTestStore(t)
	h := NewAuthHandlers(st, newTokenManager(t))

	require.NoError(t, st.StorePerson(context.Background(), &types.Person{
		ID: "per:1", Phone: "9876543210", FirstName: "Suresh", ProfileCompleted: true,
	}))

	w := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"phone":      "9876543210",
		"first_name": "Imposter",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_BadDateOfBirth(t *testing.T) {
	h := NewAuthHandlers(newTestStore(t), newTokenManager(t))

	w := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"phone":         "9876543210",
		"first_name":    "Suresh",
		"date_of_birth": "15/06/1975",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	st := newTestStore(t)
	h := NewAuthHandlers(st, newTokenManager(t))

	require.NoError(t, st.StorePerson(context.Background(), &types.Person{
		ID: "per:1", Phone: "9876543210", FirstName: "Suresh", ProfileCompleted: true,
	}))

	w := postJSON(t, h.Login, "/api/auth/login", map[string]string{"phone": "9876543210"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "per:1", resp.Person.ID)
}

func TestLogin_UnknownPhone(t *testing.T) {
	h := NewAuthHandlers(newTestStore(t), newTokenManager(t))

	w := postJSON(t, h.Login, "/api/auth/login", map[string]string{"phone": "9876543210"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogin_StubCannotLogin(t *testing.T) {
	st := newTestStore(t)
	h := NewAuthHandlers(st, newTokenManager(t))

	require.NoError(t, st.StorePerson(context.Background(), &types.Person{
		ID: "per:stub", Phone: "9876543210", FirstName: "Aai",
	}))

	w := postJSON(t, h.Login, "/api/auth/login", map[string]string{"phone": "9876543210"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
