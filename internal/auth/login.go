// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// dummyPasswordHash is verified when the account is missing or cannot use a
// password, so every failed login costs one full key derivation. It is a
// well-formed record that no password derives to.
//
//nolint:gosec // G101: not a credential
const dummyPasswordHash = "AAAAAAAAAAAAAAAAAAAAAA==.AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=="

func errInvalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrapf(ErrUnauthorized, "invalid email or password")
}

// Login authenticates an email account by password and issues a new token
// pair. Unknown emails, wrong passwords and accounts without a password all
// fail with the same error. Outstanding refresh tokens stay valid.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, lookupErr := s.store.Accounts().GetByEmail(ctx, NormalizeEmail(email))
	if lookupErr != nil && !errors.Is(lookupErr, ErrNotFound) {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get account by email").
			Wrap(lookupErr)
	}

	targetHash := dummyPasswordHash
	usable := lookupErr == nil && account.AcceptsPassword()
	if usable {
		targetHash = *account.PasswordHash
	}

	if valid := s.hasher.Verify(password, targetHash); !usable || !valid {
		if lookupErr == nil {
			s.logger.WarnContext(ctx, "login failed", "account_id", account.ID.String())
		} else {
			s.logger.WarnContext(ctx, "login failed for unknown email")
		}
		return nil, errInvalidCredentials()
	}

	var result *AuthResult
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		var err error
		result, err = s.issueSession(ctx, tx, account, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID.String())
	return result, nil
}
