package idola

import (
	"errors"
	"fmt"
)

// ErrSessionInvalid is returned when the upstream rejects the credentials of an
// otherwise well-formed request. The only recovery is a full Start.
var ErrSessionInvalid = errors.New("idola: session invalid")

// ErrNotLoggedIn is returned by authenticated calls made before Start succeeded
// or after the session was invalidated.
var ErrNotLoggedIn = errors.New("idola: not logged in")

// ErrStatus matches every StatusError with errors.Is.
var ErrStatus = errors.New("idola: unexpected status")

// StatusError is a non-success HTTP status returned by an endpoint.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("idola: %s returned status %d", e.Endpoint, e.Code)
}

func (e StatusError) Is(target error) bool {
	return target == ErrStatus
}

// NeedsRelogin reports whether err can be recovered from by re-running the handshake.
func NeedsRelogin(err error) bool {
	return errors.Is(err, ErrSessionInvalid) || errors.Is(err, ErrNotLoggedIn)
}
