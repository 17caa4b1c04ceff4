// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import "errors"

// Error kinds. Failures returned by Service wrap exactly one of these so the
// boundary layer can classify them with errors.Is. Unexpected store and email
// faults wrap none of them.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized covers bad credentials and tokens that are not active.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict is returned when an email is already registered.
	ErrConflict = errors.New("conflict")

	// ErrBadRequest covers malformed input and expired or mismatched tokens
	// where the operation reports those distinctly.
	ErrBadRequest = errors.New("bad request")
)

// ErrTokenInactive is returned by repositories when a conditional consume
// matched no row because the token was already used, revoked, or expired.
var ErrTokenInactive = errors.New("token not active")

// Kind returns the error kind wrapped by err, or nil when err carries none.
func Kind(err error) error {
	for _, kind := range []error{ErrUnauthorized, ErrNotFound, ErrConflict, ErrBadRequest} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
