// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AccessToken is a bearer credential obtained through the client-credentials
// exchange. Tokens are replaced on refresh, never modified in place.
type AccessToken struct {
	Value     string    `json:"access_token" yaml:"access_token"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

// IsZero reports whether the token has never been issued.
func (t AccessToken) IsZero() bool {
	return t.Value == ""
}

// Expired reports whether the token is unusable at now. A token is invalid
// from its expiry instant onwards.
func (t AccessToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Valid reports whether the token is present and unexpired at now.
func (t AccessToken) Valid(now time.Time) bool {
	return !t.IsZero() && !t.Expired(now)
}
