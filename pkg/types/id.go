package types

import "github.com/google/uuid"

// ID prefixes make identifiers self-describing in logs and API payloads.
const (
	personIDPrefix       = "per:"
	relationIDPrefix     = "rel:"
	notificationIDPrefix = "ntf:"
)

// NewPersonID generates a unique person identifier.
func NewPersonID() string {
	return personIDPrefix + uuid.NewString()
}

// NewRelationID generates a unique relation identifier.
func NewRelationID() string {
	return relationIDPrefix + uuid.NewString()
}

// NewNotificationID generates a unique notification identifier.
func NewNotificationID() string {
	return notificationIDPrefix + uuid.NewString()
}
