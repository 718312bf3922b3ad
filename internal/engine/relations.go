package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/scrypster/banyan/internal/kinship"
	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/pkg/types"
)

// Notifier delivers a notification to its recipient. Delivery is
// best-effort; implementations must not block the caller on failure.
type Notifier interface {
	Dispatch(ctx context.Context, n *types.Notification)
}

// RelationService manages the relation request lifecycle.
type RelationService struct {
	store    storage.Store
	notifier Notifier
	logger   *log.Logger
}

// NewRelationService creates a relation service. notifier may be nil, in
// which case lifecycle events produce no notifications.
func NewRelationService(store storage.Store, notifier Notifier, logger *log.Logger) *RelationService {
	if logger == nil {
		logger = log.Default()
	}
	return &RelationService{store: store, notifier: notifier, logger: logger}
}

// CreateRelationInput describes a new relation request. The target is
// identified by phone; when no person with that phone exists, a stub
// record is created so the edge has a real endpoint.
type CreateRelationInput struct {
	// Target contact and identity, used only when creating a stub.
	Phone     string
	FirstName string
	Gender    string

	// Code is the kinship code as seen from the from-endpoint.
	Code string

	// SourceID optionally re-roots the edge at another person, letting
	// an actor add relatives on behalf of someone in their subtree.
	// Empty means the actor themself.
	SourceID string

	CustomName     string
	CustomPhotoURL string
}

// Create validates the input, resolves or creates the target person, and
// upserts a PENDING edge. Re-creating an existing (from, to, code) edge
// resets it to PENDING rather than duplicating it.
func (s *RelationService) Create(ctx context.Context, actorID string, in CreateRelationInput) (*types.Relation, error) {
	if in.Code == "" {
		return nil, validationf("relation code is required")
	}

	phone := types.NormalizePhone(in.Phone)
	if phone == "" {
		return nil, validationf("invalid phone number: %q", in.Phone)
	}

	target, err := s.store.GetPersonByPhone(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		if in.FirstName == "" {
			return nil, validationf("first name is required to create a new person")
		}
		target = &types.Person{
			ID:        types.NewPersonID(),
			Phone:     phone,
			FirstName: in.FirstName,
			Gender:    types.NormalizeGender(in.Gender),
		}
		if err := s.store.StorePerson(ctx, target); err != nil {
			return nil, dependency("failed to create target person", err)
		}
	} else if err != nil {
		return nil, dependency("failed to look up target person", err)
	}

	fromID := actorID
	if in.SourceID != "" {
		fromID = in.SourceID
	}
	if target.ID == fromID {
		return nil, validationf("cannot create a relation to oneself")
	}

	rel, err := s.store.UpsertRelation(ctx, &types.Relation{
		ID:             types.NewRelationID(),
		FromID:         fromID,
		ToID:           target.ID,
		Code:           in.Code,
		Label:          kinship.Label(in.Code),
		Status:         types.RelationPending,
		CustomName:     in.CustomName,
		CustomPhotoURL: in.CustomPhotoURL,
		CreatedBy:      actorID,
	})
	if err != nil {
		return nil, dependency("failed to create relation", err)
	}

	s.notifyRequestCreated(ctx, actorID, target, rel)
	return rel, nil
}

// Approve confirms a pending edge and materializes its mirror edge.
// Only the recipient of the request may approve it.
//
// When the primary flip succeeds but the mirror write fails, the
// confirmed edge is returned together with a ConsistencyWarning: the
// approval stands, and the mirror can be repaired by the other side
// re-creating the edge.
func (s *RelationService) Approve(ctx context.Context, actorID, relationID string) (*types.Relation, error) {
	rel, err := s.getForDecision(ctx, actorID, relationID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateRelationStatus(ctx, rel.ID, types.RelationConfirmed); err != nil {
		return nil, dependency("failed to confirm relation", err)
	}
	rel.Status = types.RelationConfirmed

	// CreatedBy is left empty: when the mirror already exists the upsert
	// preserves its recorded creator and only flips the status.
	mirrorCode := kinship.Reciprocal(rel.Code)
	_, mirrorErr := s.store.UpsertRelation(ctx, &types.Relation{
		ID:     types.NewRelationID(),
		FromID: rel.ToID,
		ToID:   rel.FromID,
		Code:   mirrorCode,
		Label:  kinship.Label(mirrorCode),
		Status: types.RelationConfirmed,
	})

	s.notifyDecision(ctx, actorID, rel, types.NotifyRelationApproved)

	if mirrorErr != nil {
		s.logger.Printf("WARN: relation %s confirmed but mirror write failed: %v", rel.ID, mirrorErr)
		return rel, &ConsistencyWarning{Msg: "relation confirmed but mirror edge was not created", Err: mirrorErr}
	}
	return rel, nil
}

// Reject declines a pending edge. Only the recipient may reject, and no
// mirror edge is created.
func (s *RelationService) Reject(ctx context.Context, actorID, relationID string) (*types.Relation, error) {
	rel, err := s.getForDecision(ctx, actorID, relationID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateRelationStatus(ctx, rel.ID, types.RelationRejected); err != nil {
		return nil, dependency("failed to reject relation", err)
	}
	rel.Status = types.RelationRejected

	s.notifyDecision(ctx, actorID, rel, types.NotifyRelationRejected)
	return rel, nil
}

// getForDecision loads a relation and checks that actorID is its
// recipient and that it is still pending.
func (s *RelationService) getForDecision(ctx context.Context, actorID, relationID string) (*types.Relation, error) {
	rel, err := s.store.GetRelation(ctx, relationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{Kind: "relation", ID: relationID}
	}
	if err != nil {
		return nil, dependency("failed to load relation", err)
	}

	if rel.ToID != actorID {
		return nil, authorizationf("only the recipient can decide this request")
	}
	if rel.Status != types.RelationPending {
		return nil, validationf("relation is %s, only pending requests can be decided", rel.Status)
	}
	return rel, nil
}

// UpdateRelationInput carries the editable fields of an edge. Nil fields
// are left unchanged.
type UpdateRelationInput struct {
	Code           *string
	Label          *string
	CustomName     *string
	CustomPhotoURL *string
}

// Update edits an edge's code, label override or display overlays. Only
// the from-endpoint may edit. A code change on a confirmed edge rewrites
// the mirror edge's code to the new reciprocal; if that rewrite fails the
// primary edit stands and a ConsistencyWarning is returned.
func (s *RelationService) Update(ctx context.Context, actorID, relationID string, in UpdateRelationInput) (*types.Relation, error) {
	rel, err := s.store.GetRelation(ctx, relationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{Kind: "relation", ID: relationID}
	}
	if err != nil {
		return nil, dependency("failed to load relation", err)
	}

	if rel.FromID != actorID {
		return nil, authorizationf("only the relation's owner can edit it")
	}
	if rel.Status == types.RelationRejected {
		return nil, validationf("rejected relations cannot be edited")
	}

	codeChanged := false
	if in.Code != nil && *in.Code != "" && *in.Code != rel.Code {
		rel.Code = *in.Code
		rel.Label = kinship.Label(*in.Code)
		codeChanged = true
	}
	if in.Label != nil {
		rel.Label = *in.Label
	}
	if in.CustomName != nil {
		rel.CustomName = *in.CustomName
	}
	if in.CustomPhotoURL != nil {
		rel.CustomPhotoURL = *in.CustomPhotoURL
	}

	if err := s.store.UpdateRelation(ctx, rel); err != nil {
		return nil, dependency("failed to update relation", err)
	}

	if codeChanged && rel.Status == types.RelationConfirmed {
		mirrorCode := kinship.Reciprocal(rel.Code)
		_, err := s.store.RewriteMirrorCode(ctx, rel.ToID, rel.FromID, mirrorCode, kinship.Label(mirrorCode))
		if err != nil {
			s.logger.Printf("WARN: relation %s updated but mirror rewrite failed: %v", rel.ID, err)
			return rel, &ConsistencyWarning{Msg: "relation updated but mirror edge was not rewritten", Err: err}
		}
	}
	return rel, nil
}

// Delete removes one edge. Participants and the edge's creator may
// delete; the mirror edge, if any, is left in place.
func (s *RelationService) Delete(ctx context.Context, actorID, relationID string) error {
	rel, err := s.store.GetRelation(ctx, relationID)
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Kind: "relation", ID: relationID}
	}
	if err != nil {
		return dependency("failed to load relation", err)
	}

	if !rel.IsParticipant(actorID) && rel.CreatedBy != actorID {
		return authorizationf("not a participant or creator of this relation")
	}

	if err := s.store.DeleteRelation(ctx, rel.ID); err != nil {
		return dependency("failed to delete relation", err)
	}
	return nil
}

// RelationListItem pairs a viewer-resolved edge with the display record
// of the person on its far end.
type RelationListItem struct {
	Relation types.RelationView   `json:"relation"`
	Person   *types.DisplayPerson `json:"person"`
}

// List returns the viewer's relations: their own outgoing edges plus
// incoming pending and rejected ones, each resolved from the viewer's
// side.
func (s *RelationService) List(ctx context.Context, viewerID string) ([]RelationListItem, error) {
	rels, err := s.store.ListRelationsForViewer(ctx, viewerID)
	if err != nil {
		return nil, dependency("failed to list relations", err)
	}
	return s.resolveItems(ctx, viewerID, rels)
}

// ListRequests returns the viewer's incoming pending requests, oldest
// first, with each requester's display record.
func (s *RelationService) ListRequests(ctx context.Context, viewerID string) ([]RelationListItem, error) {
	rels, err := s.store.ListPendingTo(ctx, viewerID)
	if err != nil {
		return nil, dependency("failed to list pending requests", err)
	}
	return s.resolveItems(ctx, viewerID, rels)
}

func (s *RelationService) resolveItems(ctx context.Context, viewerID string, rels []*types.Relation) ([]RelationListItem, error) {
	ids := make([]string, 0, len(rels))
	for _, rel := range rels {
		if other := otherEndpoint(rel, viewerID); other != "" {
			ids = append(ids, other)
		}
	}

	persons, err := s.store.GetPersons(ctx, ids)
	if err != nil {
		return nil, dependency("failed to load relation endpoints", err)
	}

	items := make([]RelationListItem, 0, len(rels))
	for _, rel := range rels {
		p := persons[otherEndpoint(rel, viewerID)]
		if p == nil {
			continue
		}
		items = append(items, RelationListItem{
			Relation: ResolveView(rel, viewerID, viewerID),
			Person:   ResolveDisplayPerson(p, rel, viewerID),
		})
	}
	return items, nil
}

func otherEndpoint(rel *types.Relation, personID string) string {
	if rel.FromID == personID {
		return rel.ToID
	}
	return rel.FromID
}

func (s *RelationService) notifyRequestCreated(ctx context.Context, actorID string, target *types.Person, rel *types.Relation) {
	if s.notifier == nil {
		return
	}

	actorName := "Someone"
	if actor, err := s.store.GetPerson(ctx, actorID); err == nil {
		actorName = actor.FirstName
	}

	s.notifier.Dispatch(ctx, &types.Notification{
		ID:         types.NewNotificationID(),
		PersonID:   target.ID,
		Type:       types.NotifyRelationRequest,
		Title:      "New Relation Request",
		Message:    fmt.Sprintf("%s has added you as %s", actorName, kinship.Label(rel.Code)),
		RelationID: rel.ID,
	})
	s.notifier.Dispatch(ctx, &types.Notification{
		ID:         types.NewNotificationID(),
		PersonID:   actorID,
		Type:       types.NotifyRelationRequest,
		Title:      "Request Sent",
		Message:    fmt.Sprintf("Waiting for approval from %s", target.FirstName),
		RelationID: rel.ID,
	})
}

func (s *RelationService) notifyDecision(ctx context.Context, actorID string, rel *types.Relation, typ types.NotificationType) {
	if s.notifier == nil {
		return
	}

	actorName := "Someone"
	if actor, err := s.store.GetPerson(ctx, actorID); err == nil {
		actorName = actor.FirstName
	}

	title := "Relation Approved"
	message := fmt.Sprintf("%s accepted your relation request", actorName)
	if typ == types.NotifyRelationRejected {
		title = "Relation Rejected"
		message = fmt.Sprintf("%s declined your relation request", actorName)
	}

	s.notifier.Dispatch(ctx, &types.Notification{
		ID:         types.NewNotificationID(),
		PersonID:   rel.FromID,
		Type:       typ,
		Title:      title,
		Message:    message,
		RelationID: rel.ID,
	})
}
