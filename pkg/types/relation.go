package types

import "time"

// RelationStatus is the lifecycle state of a relation edge.
//
// Edges are created PENDING. Only the recipient (to-endpoint) can move a
// pending edge to CONFIRMED or REJECTED. There is no transition out of
// REJECTED, and deleted edges are never resurrected.
type RelationStatus string

const (
	RelationPending   RelationStatus = "PENDING"
	RelationConfirmed RelationStatus = "CONFIRMED"
	RelationRejected  RelationStatus = "REJECTED"
)

// Relation is a directed kinship edge between two persons.
//
// The edge carries the kinship code as seen from the from-endpoint; the
// to-endpoint sees the reciprocal code. Once approved, two confirmed edges
// between the same pair exist as mirror images (A→B code X, B→A code
// reciprocal(X)). They are independent records kept semantically
// consistent by the lifecycle manager. At most one edge exists per
// ordered (from, to, code) triple.
type Relation struct {
	ID     string `json:"id"`
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`

	// Code is the kinship taxonomy code (e.g. "KAKA", "BHAU").
	Code string `json:"code"`

	// Label is an optional free-text override of the directory label,
	// authored from the from-endpoint's perspective. It is never shown
	// to the reciprocal side.
	Label string `json:"label,omitempty"`

	Status RelationStatus `json:"status"`

	// Per-edge display overrides, settable only by the edge's creator.
	CustomName     string `json:"custom_name,omitempty"`
	CustomPhotoURL string `json:"custom_photo_url,omitempty"`

	// CreatedBy is the identity credited with authoring the edge. It is
	// not always the from-endpoint: a person may add relatives on behalf
	// of their own subtree root. Used for visibility and edit rights.
	CreatedBy string `json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsParticipant reports whether personID is one of the edge's endpoints.
func (r *Relation) IsParticipant(personID string) bool {
	return r.FromID == personID || r.ToID == personID
}

// RelationTypeView is the code/label pair a specific viewer sees for an
// edge, after reciprocal resolution.
type RelationTypeView struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// RelationView is the viewer-resolved presentation of an edge inside list
// and tree responses.
type RelationView struct {
	ID             string           `json:"id"`
	FromID         string           `json:"from_id"`
	ToID           string           `json:"to_id"`
	RelationType   RelationTypeView `json:"relation_type"`
	Direction      TreeDirection    `json:"direction"`
	SourceID       string           `json:"source_id"`
	Status         RelationStatus   `json:"status"`
	CustomName     string           `json:"custom_name,omitempty"`
	CustomPhotoURL string           `json:"custom_photo_url,omitempty"`
}

// TreeDirection indicates on which side of an edge the traversal source
// sits: OUTGOING when the source is the from-endpoint.
type TreeDirection string

const (
	DirectionOutgoing TreeDirection = "OUTGOING"
	DirectionIncoming TreeDirection = "INCOMING"
)

// TreeNode is one discovered relative in a tree view: the resolved
// display person plus the resolved edge that connected them.
type TreeNode struct {
	Person   *DisplayPerson `json:"person"`
	Relation RelationView   `json:"relation"`
}

// TreeLevel groups tree nodes by absolute generation level.
// Positive levels are ancestors, negative levels descendants, level 0 is
// the root's own generation.
type TreeLevel struct {
	Level int        `json:"level"`
	Nodes []TreeNode `json:"nodes"`
}

// Tree is the generation-leveled, visibility-filtered subgraph rooted at
// one viewer. Levels are sorted ascending.
type Tree struct {
	Root   *Person     `json:"root"`
	Levels []TreeLevel `json:"levels"`
}
