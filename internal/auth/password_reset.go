// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ForgotPassword records a reset token for the account and emails the reset
// link. An unknown email is reported as ErrNotFound.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	var accountID ulid.ULID
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		account, err := tx.Accounts().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("ACCOUNT_NOT_FOUND").Wrapf(ErrNotFound, "account not found")
			}
			return oops.Code("FORGOT_PASSWORD_FAILED").With("operation", "get account by email").Wrap(err)
		}

		value, err := s.tokens.NewToken()
		if err != nil {
			return oops.Code("FORGOT_PASSWORD_FAILED").With("operation", "generate token").Wrap(err)
		}
		reset := &PasswordResetToken{newOneTimeToken(account.ID, value, s.clock.Now(), s.cfg.ResetTokenLifetime)}
		if err := tx.ResetTokens().Create(ctx, reset); err != nil {
			return oops.Code("FORGOT_PASSWORD_FAILED").
				With("operation", "create reset token").
				With("account_id", account.ID.String()).
				Wrap(err)
		}

		if err := ctx.Err(); err != nil {
			return oops.Code("RESET_EMAIL_FAILED").Wrap(err)
		}
		if err := s.email.SendPasswordResetEmail(ctx, account.Email, s.links.ResetPassword(value)); err != nil {
			return oops.Code("RESET_EMAIL_FAILED").
				With("account_id", account.ID.String()).
				Wrap(err)
		}
		accountID = account.ID
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset requested", "account_id", accountID.String())
	return nil
}

// ResetPassword replaces the account password and consumes the reset token.
// Absent or used tokens are ErrNotFound; expired tokens are ErrBadRequest.
// Outstanding refresh tokens are left untouched.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").With("operation", "hash password").Wrap(err)
	}

	var accountID ulid.ULID
	err = s.store.WithinTx(ctx, func(tx Repositories) error {
		reset, err := tx.ResetTokens().GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("RESET_TOKEN_NOT_FOUND").Wrapf(ErrNotFound, "reset token not found")
			}
			return oops.Code("RESET_PASSWORD_FAILED").With("operation", "get reset token").Wrap(err)
		}

		now := s.clock.Now()
		switch reset.State(now) {
		case TokenConsumed:
			return errResetTokenUsed()
		case TokenExpired:
			return oops.Code("RESET_TOKEN_EXPIRED").Wrapf(ErrBadRequest, "reset token has expired")
		}

		account, err := loadAccount(ctx, tx, reset.AccountID)
		if err != nil {
			return err
		}

		if err := tx.ResetTokens().Consume(ctx, reset.ID, now); err != nil {
			if errors.Is(err, ErrTokenInactive) {
				return errResetTokenUsed()
			}
			return oops.Code("RESET_PASSWORD_FAILED").With("operation", "consume reset token").Wrap(err)
		}
		if err := tx.Accounts().UpdatePassword(ctx, account.ID, hash, now); err != nil {
			return oops.Code("RESET_PASSWORD_FAILED").
				With("operation", "update password").
				With("account_id", account.ID.String()).
				Wrap(err)
		}
		accountID = account.ID
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset", "account_id", accountID.String())
	return nil
}

func errResetTokenUsed() error {
	return oops.Code("RESET_TOKEN_USED").Wrapf(ErrNotFound, "reset token has already been used")
}
