// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account. Returns an ErrConflict error when the
	// email is already registered.
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)
	// GetByEmail looks up a normalized email.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	IsEmailUnique(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string, at time.Time) error
	SetEmailVerification(ctx context.Context, id ulid.ULID, status VerificationStatus, at time.Time) error
}

// ProfileRepository manages the Member and Owner profile variants.
type ProfileRepository interface {
	CreateMember(ctx context.Context, profile *MemberProfile) error
	CreateOwner(ctx context.Context, profile *OwnerProfile) error
	GetMember(ctx context.Context, accountID ulid.ULID) (*MemberProfile, error)
	GetOwner(ctx context.Context, accountID ulid.ULID) (*OwnerProfile, error)
}

// RefreshTokenRepository manages refresh token persistence.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	// Consume marks an Active token used. It is a conditional write: when the
	// token is no longer Active at now it returns ErrTokenInactive.
	Consume(ctx context.Context, id ulid.ULID, now time.Time) error
	// Revoke marks the token revoked. Revoking twice is not an error.
	Revoke(ctx context.Context, id ulid.ULID, now time.Time) error
}

// VerificationTokenRepository manages email verification tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *VerificationToken) error
	GetByToken(ctx context.Context, token string) (*VerificationToken, error)
	GetLatestByAccount(ctx context.Context, accountID ulid.ULID) (*VerificationToken, error)
	// Consume has the same conditional semantics as RefreshTokenRepository.Consume.
	Consume(ctx context.Context, id ulid.ULID, now time.Time) error
}

// PasswordResetTokenRepository manages password reset tokens.
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*PasswordResetToken, error)
	GetLatestByAccount(ctx context.Context, accountID ulid.ULID) (*PasswordResetToken, error)
	Consume(ctx context.Context, id ulid.ULID, now time.Time) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Accounts() AccountRepository
	Profiles() ProfileRepository
	RefreshTokens() RefreshTokenRepository
	VerificationTokens() VerificationTokenRepository
	ResetTokens() PasswordResetTokenRepository
}

// Store is the credential store. Repositories used directly run outside any
// transaction. WithinTx runs fn against repositories bound to one
// transaction and commits only when fn returns nil and ctx is not done.
// Inside fn, callers must use the repositories passed to fn.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
}
