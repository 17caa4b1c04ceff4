// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import "context"

// FederatedIdentity is the identity asserted by an external provider.
type FederatedIdentity struct {
	Provider      Provider
	Subject       string
	Email         string
	EmailVerified bool
}

// IdentityVerifier validates an external ID token. Tokens that fail
// validation produce an error wrapping ErrUnauthorized; any other error is a
// transport fault.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedIdentity, error)
}
