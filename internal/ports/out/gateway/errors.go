package gateway

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindNetwork covers transport failures and unexpected server responses.
	KindNetwork Kind = "NETWORK"
	// KindUnauthorized is an auth rejection (401 / expired token).
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindNotFound is a 404. For trip lookups it means "no active trip" rather
	// than a failure.
	KindNotFound Kind = "NOT_FOUND"
)

// Error is the gateway-level error taxonomy.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when one was received, 0 otherwise
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func IsNotFound(err error) bool     { return is(err, KindNotFound) }
func IsUnauthorized(err error) bool { return is(err, KindUnauthorized) }
func IsNetworkError(err error) bool { return is(err, KindNetwork) }

func is(err error, k Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == k
}
