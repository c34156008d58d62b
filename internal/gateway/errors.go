// Package gateway exposes a CCXT-shaped trading interface over
// interchangeable backends: the in-memory replay engine, a remote
// paper-trading REST service, or a live exchange. Strategies written
// against the facade run unchanged across all three.
package gateway

import (
	"errors"
	"fmt"

	"mockx/internal/replay"
)

// The business sentinels are shared with the replay engine so that
// errors.Is works identically whether the failure came from the
// in-process engine or was mapped from a remote response.
var (
	ErrInsufficientFunds = replay.ErrInsufficientFunds
	ErrNotFound          = replay.ErrNotFound

	// ErrNotSupported marks a feature the current mode's backend cannot
	// serve (see capabilities.go).
	ErrNotSupported = errors.New("not supported")
)

// HTTPError is a transport-level failure from the paper REST service.
// Status and Payload are kept as fields so callers can react
// programmatically instead of parsing the message.
type HTTPError struct {
	Status  int
	Message string
	Payload []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// AuthError separates 401/403 from other HTTP failures; retrying those
// without new credentials is pointless.
type AuthError struct {
	HTTPError
}
