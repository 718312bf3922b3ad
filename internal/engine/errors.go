// Package engine implements the kinship graph semantics: viewer-relative
// resolution, the relation request lifecycle with mirror materialization,
// and generation-leveled tree building.
package engine

import "fmt"

// ValidationError reports rejected input (bad phone, missing code, self
// relation). Maps to HTTP 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a missing person or relation. Maps to HTTP 404.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// AuthorizationError reports an actor acting on an edge they have no
// rights over. Maps to HTTP 403.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// ConflictError reports a state that forbids the operation, such as
// registering an already claimed phone number. Maps to HTTP 409.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// DependencyError reports that the persistence layer failed. The request
// did not change state beyond what the message describes and may be
// retried; the engine itself never retries. Maps to HTTP 503.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// ConsistencyWarning reports that a primary write succeeded but its
// follow-up mirror write failed. The primary change stands; the caller
// should surface the warning rather than roll back.
type ConsistencyWarning struct {
	Msg string
	Err error
}

func (e *ConsistencyWarning) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *ConsistencyWarning) Unwrap() error { return e.Err }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func authorizationf(format string, args ...interface{}) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

func dependency(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}
