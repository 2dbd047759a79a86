package fritz

import (
	"errors"
	"fmt"
)

// ErrSessionExpired signals that the router no longer accepts the
// current session id. The caller may re-authenticate once and retry.
var ErrSessionExpired = errors.New("fritz: session expired")

// AuthError reports a failed login: missing challenge, rejected
// credentials, or a transport failure during the exchange.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fritz: authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("fritz: authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a failed usage-state retrieval other than an
// expired session.
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fritz: fetch failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("fritz: fetch failed: %s", e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }
