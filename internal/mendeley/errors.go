// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mendeley

import (
	"errors"
	"fmt"
)

// ErrCredentialsMissing is returned when the application ID or secret is not
// configured. No request is attempted.
var ErrCredentialsMissing = errors.New("mendeley application credentials are not configured")

// maxErrorBody bounds the response body kept in error messages.
const maxErrorBody = 512

// UpstreamError reports a failed call to the Mendeley API: either a
// non-success HTTP status or a transport failure (StatusCode 0).
type UpstreamError struct {
	// Op names the call, e.g. "POST /oauth/token".
	Op string

	StatusCode int

	// Body is the raw response body, kept for diagnostics.
	Body string

	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("mendeley %s: unable to reach API: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("mendeley %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("mendeley %s: HTTP %d: %s", e.Op, e.StatusCode, truncate(e.Body, maxErrorBody))
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is or wraps an *UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func truncate(s string, max int) string {
	if s == "" {
		return "no body"
	}
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
