// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// GoogleLogin signs in with a Google ID token. A first login creates a
// verified account without a password or profile. An email already
// registered with a password is ErrConflict.
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.identities == nil {
		return nil, oops.Code("FEDERATED_LOGIN_DISABLED").Wrapf(ErrBadRequest, "federated login is not configured")
	}

	identity, err := s.identities.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, oops.Code("FEDERATED_TOKEN_INVALID").Wrapf(ErrUnauthorized, "invalid identity token")
		}
		return nil, oops.Code("FEDERATED_LOGIN_FAILED").With("operation", "verify identity token").Wrap(err)
	}
	if identity.Email == "" || !identity.EmailVerified {
		return nil, oops.Code("FEDERATED_TOKEN_INVALID").Wrapf(ErrUnauthorized, "identity token has no verified email")
	}
	email := NormalizeEmail(identity.Email)

	var (
		result  *AuthResult
		created bool
	)
	err = s.store.WithinTx(ctx, func(tx Repositories) error {
		now := s.clock.Now()

		account, err := tx.Accounts().GetByEmail(ctx, email)
		switch {
		case errors.Is(err, ErrNotFound):
			account, err = NewAccount(email, nil, ProviderGoogle, AccountTypeUnknown, VerificationVerified, now)
			if err != nil {
				return err
			}
			if err := tx.Accounts().Create(ctx, account); err != nil {
				if errors.Is(err, ErrConflict) {
					return errEmailTaken()
				}
				return oops.Code("FEDERATED_LOGIN_FAILED").With("operation", "create account").Wrap(err)
			}
			created = true
		case err != nil:
			return oops.Code("FEDERATED_LOGIN_FAILED").With("operation", "get account by email").Wrap(err)
		case account.Provider != ProviderGoogle:
			return oops.Code("EMAIL_REGISTERED_WITH_PASSWORD").
				With("account_id", account.ID.String()).
				Wrapf(ErrConflict, "email is registered with a password")
		}

		result, err = s.issueSession(ctx, tx, account, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "federated login succeeded",
		"account_id", result.AccountID.String(),
		"provider", ProviderGoogle.String(),
		"created", created,
	)
	return result, nil
}
