package engine

import (
	"github.com/scrypster/banyan/internal/kinship"
	"github.com/scrypster/banyan/pkg/types"
)

// ResolveForViewer computes the code/label pair a viewer sees for an edge.
//
// The from-endpoint sees the stored code, with the edge's free-text label
// override taking precedence over the directory label. The to-endpoint
// sees the reciprocal code with the directory label only: the override
// was authored from the opposite perspective and never shows on the
// reciprocal side. A viewer who is neither endpoint resolves exactly as
// the from case, override included; this is the path a creator or a
// traversal intermediary takes.
func ResolveForViewer(rel *types.Relation, viewerID string) types.RelationTypeView {
	if viewerID == rel.ToID && viewerID != rel.FromID {
		code := kinship.Reciprocal(rel.Code)
		return types.RelationTypeView{Code: code, Label: kinship.Label(code)}
	}

	label := kinship.Label(rel.Code)
	if rel.Label != "" {
		label = rel.Label
	}
	return types.RelationTypeView{Code: rel.Code, Label: label}
}

// ResolveView builds the full viewer-resolved presentation of an edge,
// including traversal direction relative to sourceID.
func ResolveView(rel *types.Relation, viewerID, sourceID string) types.RelationView {
	direction := types.DirectionIncoming
	if rel.FromID == sourceID {
		direction = types.DirectionOutgoing
	}

	view := types.RelationView{
		ID:           rel.ID,
		FromID:       rel.FromID,
		ToID:         rel.ToID,
		RelationType: ResolveForViewer(rel, viewerID),
		Direction:    direction,
		SourceID:     sourceID,
		Status:       rel.Status,
	}

	// Alias overlays stay private to the side that authored them.
	if viewerID == rel.FromID {
		view.CustomName = rel.CustomName
		view.CustomPhotoURL = rel.CustomPhotoURL
	}
	return view
}

// ResolveDisplayPerson overlays the edge's custom name and photo onto the
// person record. Overlays apply only when the viewer authored them, that
// is when the viewer is the edge's from-endpoint; everyone else sees the
// canonical identity. The originals are always preserved alongside.
func ResolveDisplayPerson(p *types.Person, rel *types.Relation, viewerID string) *types.DisplayPerson {
	dp := &types.DisplayPerson{
		Person:            *p,
		OriginalFirstName: p.FirstName,
		OriginalPhotoURL:  p.PhotoURL,
	}

	if rel != nil && viewerID == rel.FromID {
		if rel.CustomName != "" {
			dp.FirstName = rel.CustomName
		}
		if rel.CustomPhotoURL != "" {
			dp.PhotoURL = rel.CustomPhotoURL
		}
	}
	return dp
}
