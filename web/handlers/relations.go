package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scrypster/banyan/internal/auth"
	"github.com/scrypster/banyan/internal/engine"
	"github.com/scrypster/banyan/internal/kinship"
	"github.com/scrypster/banyan/pkg/types"
)

// RelationHandlers serves the relation lifecycle and tree endpoints.
type RelationHandlers struct {
	relations *engine.RelationService
	trees     *engine.TreeBuilder
}

// NewRelationHandlers creates a RelationHandlers instance.
func NewRelationHandlers(relations *engine.RelationService, trees *engine.TreeBuilder) *RelationHandlers {
	return &RelationHandlers{relations: relations, trees: trees}
}

// createRelationRequest is the body of POST /api/relations.
type createRelationRequest struct {
	Phone          string `json:"phone"`
	FirstName      string `json:"first_name"`
	Gender         string `json:"gender"`
	Code           string `json:"relation_type_code"`
	SourceID       string `json:"source_id"`
	CustomName     string `json:"custom_name"`
	CustomPhotoURL string `json:"custom_photo_url"`
}

// ListRelations handles GET /api/relations - the viewer's resolved
// relation list.
func (h *RelationHandlers) ListRelations(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	items, err := h.relations.List(r.Context(), personID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"relations": items})
}

// CreateRelation handles POST /api/relations - create a relation request.
func (h *RelationHandlers) CreateRelation(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req createRelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	rel, err := h.relations.Create(r.Context(), personID, engine.CreateRelationInput{
		Phone:          req.Phone,
		FirstName:      req.FirstName,
		Gender:         req.Gender,
		Code:           req.Code,
		SourceID:       req.SourceID,
		CustomName:     req.CustomName,
		CustomPhotoURL: req.CustomPhotoURL,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rel)
}

// updateRelationRequest is the body of PUT /api/relations/{id}. Absent
// fields are left unchanged.
type updateRelationRequest struct {
	Code           *string `json:"relation_type_code"`
	Label          *string `json:"label"`
	CustomName     *string `json:"custom_name"`
	CustomPhotoURL *string `json:"custom_photo_url"`
}

// relationResponse wraps a relation together with an optional consistency
// warning from a partial mirror write.
type relationResponse struct {
	Relation *types.Relation `json:"relation"`
	Warning  string          `json:"warning,omitempty"`
}

// UpdateRelation handles PUT /api/relations/{id}.
func (h *RelationHandlers) UpdateRelation(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req updateRelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	rel, err := h.relations.Update(r.Context(), personID, r.PathValue("id"), engine.UpdateRelationInput{
		Code:           req.Code,
		Label:          req.Label,
		CustomName:     req.CustomName,
		CustomPhotoURL: req.CustomPhotoURL,
	})
	if err != nil {
		var warn *engine.ConsistencyWarning
		if errors.As(err, &warn) {
			respondJSON(w, http.StatusOK, relationResponse{Relation: rel, Warning: warn.Msg})
			return
		}
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, relationResponse{Relation: rel})
}

// DeleteRelation handles DELETE /api/relations/{id}.
func (h *RelationHandlers) DeleteRelation(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.relations.Delete(r.Context(), personID, r.PathValue("id")); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ApproveRelation handles POST /api/relations/{id}/approve.
func (h *RelationHandlers) ApproveRelation(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	rel, err := h.relations.Approve(r.Context(), personID, r.PathValue("id"))
	if err != nil {
		var warn *engine.ConsistencyWarning
		if errors.As(err, &warn) {
			respondJSON(w, http.StatusOK, relationResponse{Relation: rel, Warning: warn.Msg})
			return
		}
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, relationResponse{Relation: rel})
}

// RejectRelation handles POST /api/relations/{id}/reject.
func (h *RelationHandlers) RejectRelation(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	rel, err := h.relations.Reject(r.Context(), personID, r.PathValue("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, relationResponse{Relation: rel})
}

// ListRequests handles GET /api/relations/requests - incoming pending
// requests, oldest first.
func (h *RelationHandlers) ListRequests(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	items, err := h.relations.ListRequests(r.Context(), personID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": items})
}

// GetTree handles GET /api/relations/tree?depth=N - the viewer's
// generation-leveled family tree.
func (h *RelationHandlers) GetTree(w http.ResponseWriter, r *http.Request) {
	personID, ok := auth.PersonID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	depth := parseInt(r.URL.Query().Get("depth"), engine.DefaultTreeDepth)
	tree, err := h.trees.Build(r.Context(), personID, depth)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

// ListRelationTypes handles GET /api/relation-types?gender=G - the
// kinship taxonomy, optionally filtered by the bearer's gender.
func (h *RelationHandlers) ListRelationTypes(w http.ResponseWriter, r *http.Request) {
	var metas []kinship.Meta
	if g := types.NormalizeGender(r.URL.Query().Get("gender")); g != "" {
		metas = kinship.ForGender(g)
	} else {
		metas = kinship.Codes()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"relation_types": metas})
}
