// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Default lifetimes for single-use email tokens.
const (
	DefaultVerificationTokenLifetime = 24 * time.Hour
	DefaultResetTokenLifetime        = 24 * time.Hour
)

// TokenState is the lifecycle state of a persisted token. Consumed, Revoked
// and Expired are terminal.
type TokenState int

// Token states.
const (
	TokenActive TokenState = iota
	TokenConsumed
	TokenRevoked
	TokenExpired
)

func (s TokenState) String() string {
	switch s {
	case TokenActive:
		return "Active"
	case TokenConsumed:
		return "Consumed"
	case TokenRevoked:
		return "Revoked"
	case TokenExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// RefreshToken is an opaque credential exchanged for a new token pair.
type RefreshToken struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	Token     string
	ExpiresAt time.Time
	IsUsed    bool
	IsRevoked bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// State returns the token state at now. A token is Active iff it is not
// used, not revoked, and now is before its expiry.
func (t *RefreshToken) State(now time.Time) TokenState {
	switch {
	case t.IsUsed:
		return TokenConsumed
	case t.IsRevoked:
		return TokenRevoked
	case !now.Before(t.ExpiresAt):
		return TokenExpired
	default:
		return TokenActive
	}
}

// OneTimeToken holds the fields shared by verification and reset tokens.
type OneTimeToken struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	Token     string
	ExpiresAt time.Time
	IsUsed    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// State returns the token state at now.
func (t *OneTimeToken) State(now time.Time) TokenState {
	switch {
	case t.IsUsed:
		return TokenConsumed
	case !now.Before(t.ExpiresAt):
		return TokenExpired
	default:
		return TokenActive
	}
}

// VerificationToken proves ownership of an account's email address.
type VerificationToken struct {
	OneTimeToken
}

// PasswordResetToken proves control of an account's email for a password reset.
type PasswordResetToken struct {
	OneTimeToken
}

func newOneTimeToken(accountID ulid.ULID, value string, now time.Time, lifetime time.Duration) OneTimeToken {
	return OneTimeToken{
		ID:        ulid.Make(),
		AccountID: accountID,
		Token:     value,
		ExpiresAt: now.Add(lifetime),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
