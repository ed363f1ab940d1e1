package domain

import (
	"errors"
	"fmt"
)

// ErrRouteInvalid rejects a session start with an empty or malformed route.
var ErrRouteInvalid = errors.New("route invalid")

// ErrSessionNotFound is returned when a session ID resolves to nothing.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionNotActive rejects operations that require an Active tracker.
var ErrSessionNotActive = errors.New("session not active")

// PositionErrorKind tags errors from the position source.
type PositionErrorKind string

const (
	PositionUnavailable      PositionErrorKind = "unavailable"
	PositionTimeout          PositionErrorKind = "timeout"
	PositionPermissionDenied PositionErrorKind = "permission_denied"
)

// PositionError is an error reported by the position source. Unavailable and
// Timeout are transient: the tracker keeps its last known state. Permission
// denial is fatal and stops the session.
type PositionError struct {
	Kind    PositionErrorKind
	Message string
}

func (e PositionError) Error() string {
	return fmt.Sprintf("position source %s: %s", e.Kind, e.Message)
}

// Fatal reports whether the error must terminate tracking.
func (e PositionError) Fatal() bool {
	return e.Kind == PositionPermissionDenied
}
