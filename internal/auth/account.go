// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AccountType discriminates which profile variant an account owns.
type AccountType int16

// Account types.
const (
	AccountTypeUnknown AccountType = iota
	AccountTypeMember
	AccountTypeOwner
)

// Roles carried in access tokens.
const (
	RoleMember = "Member"
	RoleOwner  = "Owner"
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeMember:
		return "Member"
	case AccountTypeOwner:
		return "Owner"
	default:
		return "Unknown"
	}
}

// Role maps the account type to its token role. Members are "Member" and
// every other type is "Owner".
func (t AccountType) Role() string {
	if t == AccountTypeMember {
		return RoleMember
	}
	return RoleOwner
}

// ParseAccountType parses the String form of an AccountType, ignoring case.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "member":
		return AccountTypeMember, nil
	case "owner":
		return AccountTypeOwner, nil
	case "unknown":
		return AccountTypeUnknown, nil
	default:
		return AccountTypeUnknown, oops.Code("ACCOUNT_TYPE_INVALID").
			With("account_type", s).
			Wrapf(ErrBadRequest, "unknown account type %q", s)
	}
}

// Provider identifies how an account authenticates.
type Provider int16

// Providers.
const (
	ProviderEmail Provider = iota
	ProviderGoogle
)

func (p Provider) String() string {
	switch p {
	case ProviderEmail:
		return "Email"
	case ProviderGoogle:
		return "Google"
	default:
		return "Unknown"
	}
}

// VerificationStatus is the email verification state of an account.
type VerificationStatus int16

// Verification states.
const (
	VerificationUnknown VerificationStatus = iota
	VerificationPending
	VerificationVerified
	VerificationFailed
)

func (s VerificationStatus) String() string {
	switch s {
	case VerificationPending:
		return "Pending"
	case VerificationVerified:
		return "Verified"
	case VerificationFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Account is an identity record.
type Account struct {
	ID                ulid.ULID
	Email             string
	PasswordHash      *string
	Provider          Provider
	Type              AccountType
	EmailVerification VerificationStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewAccount creates an Account with a fresh id and normalized email.
// Accounts using the Email provider must carry a password hash.
func NewAccount(email string, passwordHash *string, provider Provider, accountType AccountType, verification VerificationStatus, now time.Time) (*Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Wrapf(ErrBadRequest, "email cannot be empty")
	}
	if provider == ProviderEmail && (passwordHash == nil || *passwordHash == "") {
		return nil, oops.Code("ACCOUNT_INVALID").Wrapf(ErrBadRequest, "password hash is required for email accounts")
	}
	return &Account{
		ID:                ulid.Make(),
		Email:             email,
		PasswordHash:      passwordHash,
		Provider:          provider,
		Type:              accountType,
		EmailVerification: verification,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// AcceptsPassword reports whether the account may log in with a password.
func (a *Account) AcceptsPassword() bool {
	return a.Provider == ProviderEmail && a.PasswordHash != nil && *a.PasswordHash != ""
}

// NormalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare RFC 5322 address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return oops.Code("EMAIL_INVALID").Wrapf(ErrBadRequest, "email address is not valid")
	}
	return nil
}
