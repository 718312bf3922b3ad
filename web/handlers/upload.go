package handlers

import (
	"errors"
	"net/http"

	"github.com/scrypster/banyan/internal/assets"
	"github.com/scrypster/banyan/internal/auth"
)

// UploadHandlers serves photo uploads.
type UploadHandlers struct {
	assets assets.Store
}

// NewUploadHandlers creates an UploadHandlers instance.
func NewUploadHandlers(store assets.Store) *UploadHandlers {
	return &UploadHandlers{assets: store}
}

// UploadPhoto handles POST /api/upload - store a multipart photo and
// return its public URL. The form field is named "photo".
func (h *UploadHandlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.PersonID(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo form field is required", err)
		return
	}
	defer file.Close()

	url, err := h.assets.Save(header.Filename, file)
	if errors.Is(err, assets.ErrUnsupportedType) {
		respondError(w, http.StatusBadRequest, "unsupported file type", nil)
		return
	}
	if errors.Is(err, assets.ErrTooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "file is too large", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store photo", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
