package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/scrypster/banyan/internal/auth"
	"github.com/scrypster/banyan/internal/storage"
)

// PersonHandlers serves the authenticated person's own profile.
type PersonHandlers struct {
	store storage.PersonStore
}

// NewPersonHandlers creates a PersonHandlers instance.
func NewPersonHandlers(store storage.PersonStore) *PersonHandlers {
	return &PersonHandlers{store: store}
}

// GetMe handles GET /api/users/me - return the authenticated person.
func (h *PersonHandlers) GetMe(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	p, err := h.store.GetPerson(r.Context(), personID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "person not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load person", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// UpdateMe handles PUT /api/users/me - update the authenticated person's
// profile. The phone contact key cannot be changed.
func (h *PersonHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	p, err := h.store.GetPerson(r.Context(), personID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "person not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load person", err)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.FirstName == "" {
		respondError(w, http.StatusBadRequest, "first name is required", nil)
		return
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date of birth, expected YYYY-MM-DD", err)
			return
		}
		dob = &parsed
	}

	applyProfile(p, &req, dob)
	if err := h.store.UpdatePerson(r.Context(), p); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update person", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
