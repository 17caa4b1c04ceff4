// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// RegisterRequest holds the input to Register.
type RegisterRequest struct {
	Email       string
	Password    string
	AccountType AccountType
	Profile     ProfileDetails
}

// Validate checks the request fields.
func (r RegisterRequest) Validate() error {
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := validatePassword(r.Password); err != nil {
		return err
	}
	if r.AccountType != AccountTypeMember && r.AccountType != AccountTypeOwner {
		return oops.Code("ACCOUNT_TYPE_INVALID").
			With("account_type", r.AccountType.String()).
			Wrapf(ErrBadRequest, "account type must be Member or Owner")
	}
	if strings.TrimSpace(r.Profile.Name) == "" {
		return oops.Code("PROFILE_INVALID").With("field", "name").Wrapf(ErrBadRequest, "name is required")
	}
	if strings.TrimSpace(r.Profile.Surname) == "" {
		return oops.Code("PROFILE_INVALID").With("field", "surname").Wrapf(ErrBadRequest, "surname is required")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code("PASSWORD_TOO_SHORT").
			With("min_length", MinPasswordLength).
			Wrapf(ErrBadRequest, "password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Register creates an email account with its profile, records a
// verification token, emails the verification link and issues a token pair.
// The email is sent last inside the transaction, so a dispatch failure
// leaves nothing behind.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := NormalizeEmail(req.Email)

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	var result *AuthResult
	err = s.store.WithinTx(ctx, func(tx Repositories) error {
		unique, err := tx.Accounts().IsEmailUnique(ctx, email)
		if err != nil {
			return oops.Code("REGISTER_FAILED").With("operation", "check email uniqueness").Wrap(err)
		}
		if !unique {
			return errEmailTaken()
		}

		now := s.clock.Now()
		account, err := NewAccount(email, &hash, ProviderEmail, req.AccountType, VerificationPending, now)
		if err != nil {
			return err
		}
		if err := tx.Accounts().Create(ctx, account); err != nil {
			if errors.Is(err, ErrConflict) {
				return errEmailTaken()
			}
			return oops.Code("REGISTER_FAILED").With("operation", "create account").Wrap(err)
		}

		if err := createProfile(ctx, tx, account, req.Profile); err != nil {
			return err
		}

		verification, err := s.newVerificationToken(ctx, tx, account, now)
		if err != nil {
			return err
		}

		result, err = s.issueSession(ctx, tx, account, now)
		if err != nil {
			return err
		}

		return s.sendVerification(ctx, account, verification)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered",
		"account_id", result.AccountID.String(),
		"account_type", result.AccountType.String(),
	)
	return result, nil
}

func createProfile(ctx context.Context, tx Repositories, account *Account, details ProfileDetails) error {
	switch account.Type {
	case AccountTypeMember:
		if err := tx.Profiles().CreateMember(ctx, newMemberProfile(account, details)); err != nil {
			return oops.Code("REGISTER_FAILED").With("operation", "create member profile").Wrap(err)
		}
	case AccountTypeOwner:
		if err := tx.Profiles().CreateOwner(ctx, newOwnerProfile(account, details)); err != nil {
			return oops.Code("REGISTER_FAILED").With("operation", "create owner profile").Wrap(err)
		}
	}
	return nil
}

func errEmailTaken() error {
	return oops.Code("EMAIL_ALREADY_REGISTERED").Wrapf(ErrConflict, "email is already registered")
}

func (s *Service) newVerificationToken(ctx context.Context, tx Repositories, account *Account, now time.Time) (*VerificationToken, error) {
	value, err := s.tokens.NewToken()
	if err != nil {
		return nil, oops.Code("VERIFICATION_TOKEN_FAILED").With("operation", "generate token").Wrap(err)
	}
	token := &VerificationToken{newOneTimeToken(account.ID, value, now, s.cfg.VerificationTokenLifetime)}
	if err := tx.VerificationTokens().Create(ctx, token); err != nil {
		return nil, oops.Code("VERIFICATION_TOKEN_FAILED").
			With("operation", "create token").
			With("account_id", account.ID.String()).
			Wrap(err)
	}
	return token, nil
}

// sendVerification dispatches the verification email. It refuses to send
// once ctx is done so a cancelled transaction never has a sent email.
func (s *Service) sendVerification(ctx context.Context, account *Account, token *VerificationToken) error {
	if err := ctx.Err(); err != nil {
		return oops.Code("VERIFICATION_EMAIL_FAILED").Wrap(err)
	}
	if err := s.email.SendVerificationEmail(ctx, account.Email, s.links.VerifyEmail(account.ID, token.Token)); err != nil {
		return oops.Code("VERIFICATION_EMAIL_FAILED").
			With("account_id", account.ID.String()).
			Wrap(err)
	}
	return nil
}
