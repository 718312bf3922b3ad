package types

import "time"

// NotificationType tags what a notification is about.
type NotificationType string

const (
	NotifyRelationRequest  NotificationType = "RELATION_REQUEST"
	NotifyRelationApproved NotificationType = "RELATION_APPROVED"
	NotifyRelationRejected NotificationType = "RELATION_REJECTED"
)

// NotificationState is the read flag of a notification. Notifications are
// append-only; the only mutation is flipping UNREAD to READ.
type NotificationState string

const (
	NotificationUnread NotificationState = "UNREAD"
	NotificationRead   NotificationState = "READ"
)

// Notification is a message addressed to one person, optionally
// referencing the relation edge that produced it.
type Notification struct {
	ID         string            `json:"id"`
	PersonID   string            `json:"person_id"`
	Type       NotificationType  `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	RelationID string            `json:"relation_id,omitempty"`
	State      NotificationState `json:"state"`
	ReadAt     *time.Time        `json:"read_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
