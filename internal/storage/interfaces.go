// Package storage provides composable storage interfaces for the Banyan
// kinship graph.
//
// The engine depends only on these interfaces; SQLite and PostgreSQL
// backends implement them independently. The (from, to, code) uniqueness
// of relation edges is enforced by the backend's native conflict
// handling, so concurrent writes on the same edge key serialize at the
// database rather than in application code.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/scrypster/banyan/pkg/types"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// PersonStore provides person persistence keyed by id and by the
// normalized phone contact key.
type PersonStore interface {
	// StorePerson inserts a new person.
	StorePerson(ctx context.Context, p *types.Person) error

	// GetPerson retrieves a person by ID.
	// Returns ErrNotFound if the person doesn't exist.
	GetPerson(ctx context.Context, id string) (*types.Person, error)

	// GetPersonByPhone retrieves a person by normalized phone number.
	// Returns ErrNotFound if no person has that phone.
	GetPersonByPhone(ctx context.Context, phone string) (*types.Person, error)

	// GetPersons retrieves multiple persons by ID, keyed by ID in the
	// result. Missing IDs are simply absent from the map, not an error.
	GetPersons(ctx context.Context, ids []string) (map[string]*types.Person, error)

	// UpdatePerson overwrites an existing person's mutable fields.
	// The phone contact key is immutable. Returns ErrNotFound if the
	// person doesn't exist.
	UpdatePerson(ctx context.Context, p *types.Person) error
}

// RelationStore persists relation edges with upsert semantics on the
// unique (from, to, code) key.
type RelationStore interface {
	// UpsertRelation inserts the edge or, when the (from, to, code) key
	// already exists, updates status, creator (when set on the input)
	// and custom display fields (when set on the input). It returns the
	// stored row, so a re-submission returns the existing edge's ID.
	UpsertRelation(ctx context.Context, rel *types.Relation) (*types.Relation, error)

	// GetRelation retrieves an edge by ID.
	// Returns ErrNotFound if the edge doesn't exist.
	GetRelation(ctx context.Context, id string) (*types.Relation, error)

	// UpdateRelation overwrites an edge's code, label and custom display
	// fields. Returns ErrNotFound if the edge doesn't exist.
	UpdateRelation(ctx context.Context, rel *types.Relation) error

	// UpdateRelationStatus sets the lifecycle status of one edge.
	// Returns ErrNotFound if the edge doesn't exist.
	UpdateRelationStatus(ctx context.Context, id string, status types.RelationStatus) error

	// RewriteMirrorCode updates the code and label of every edge
	// directed fromID→toID, regardless of its current code. Used when a
	// code change on a confirmed edge must propagate to its mirror.
	// Returns the number of edges rewritten.
	RewriteMirrorCode(ctx context.Context, fromID, toID, code, label string) (int, error)

	// DeleteRelation removes one edge. Its mirror is never touched.
	// Returns ErrNotFound if the edge doesn't exist.
	DeleteRelation(ctx context.Context, id string) error

	// ListRelationsForViewer returns the edges a person sees in their
	// relations list: everything they authored from their endpoint plus
	// incoming PENDING and REJECTED edges, newest first.
	ListRelationsForViewer(ctx context.Context, personID string) ([]*types.Relation, error)

	// ListPendingTo returns incoming PENDING edges for a person, oldest
	// first. This is the requests inbox.
	ListPendingTo(ctx context.Context, personID string) ([]*types.Relation, error)

	// ListTouching returns all non-REJECTED edges with either endpoint
	// in ids. This is the per-hop frontier query for tree traversal.
	ListTouching(ctx context.Context, ids []string) ([]*types.Relation, error)
}

// NotificationStore persists per-person notifications. Records are
// append-only; the only mutation is flipping the unread flag.
type NotificationStore interface {
	// CreateNotification appends a notification.
	CreateNotification(ctx context.Context, n *types.Notification) error

	// GetNotification retrieves a notification by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetNotification(ctx context.Context, id string) (*types.Notification, error)

	// ListNotifications returns a person's notifications, newest first,
	// optionally filtered by state. A limit <= 0 applies the default.
	ListNotifications(ctx context.Context, personID string, state types.NotificationState, limit int) ([]*types.Notification, error)

	// MarkNotificationRead flips one notification to READ.
	// Returns ErrNotFound if it doesn't exist.
	MarkNotificationRead(ctx context.Context, id string, readAt time.Time) error

	// MarkAllNotificationsRead flips all of a person's UNREAD
	// notifications to READ and returns the number updated.
	MarkAllNotificationsRead(ctx context.Context, personID string, readAt time.Time) (int, error)
}

// Store is the full persistence contract a backend provides.
type Store interface {
	PersonStore
	RelationStore
	NotificationStore

	// Close releases any resources held by the store.
	Close() error
}

// DefaultNotificationLimit caps notification listings when the caller
// does not provide a limit.
const DefaultNotificationLimit = 50
