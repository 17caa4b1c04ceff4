// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SendVerificationEmail records a new verification token for the account
// and emails the link. Verified accounts are rejected with ErrBadRequest.
func (s *Service) SendVerificationEmail(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	var accountID ulid.ULID
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		account, err := tx.Accounts().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("ACCOUNT_NOT_FOUND").Wrapf(ErrNotFound, "account not found")
			}
			return oops.Code("SEND_VERIFICATION_FAILED").With("operation", "get account by email").Wrap(err)
		}
		if account.EmailVerification == VerificationVerified {
			return oops.Code("EMAIL_ALREADY_VERIFIED").
				With("account_id", account.ID.String()).
				Wrapf(ErrBadRequest, "email is already verified")
		}

		token, err := s.newVerificationToken(ctx, tx, account, s.clock.Now())
		if err != nil {
			return err
		}
		accountID = account.ID
		return s.sendVerification(ctx, account, token)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "verification email sent", "account_id", accountID.String())
	return nil
}

// VerifyEmail consumes a verification token and marks the account's email
// Verified. Absent or used tokens are ErrNotFound. A token owned by another
// account, or an expired token, is ErrBadRequest.
func (s *Service) VerifyEmail(ctx context.Context, accountID ulid.ULID, token string) error {
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		verification, err := tx.VerificationTokens().GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("VERIFICATION_TOKEN_NOT_FOUND").Wrapf(ErrNotFound, "verification token not found")
			}
			return oops.Code("VERIFY_EMAIL_FAILED").With("operation", "get verification token").Wrap(err)
		}

		now := s.clock.Now()
		state := verification.State(now)
		if state == TokenConsumed {
			return errVerificationTokenUsed()
		}
		if verification.AccountID != accountID {
			return oops.Code("VERIFICATION_TOKEN_MISMATCH").
				With("account_id", accountID.String()).
				Wrapf(ErrBadRequest, "verification token does not belong to this account")
		}
		if state == TokenExpired {
			return oops.Code("VERIFICATION_TOKEN_EXPIRED").Wrapf(ErrBadRequest, "verification token has expired")
		}

		account, err := loadAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		if err := tx.VerificationTokens().Consume(ctx, verification.ID, now); err != nil {
			if errors.Is(err, ErrTokenInactive) {
				return errVerificationTokenUsed()
			}
			return oops.Code("VERIFY_EMAIL_FAILED").With("operation", "consume verification token").Wrap(err)
		}

		if account.EmailVerification == VerificationVerified {
			return nil
		}
		if err := tx.Accounts().SetEmailVerification(ctx, account.ID, VerificationVerified, now); err != nil {
			return oops.Code("VERIFY_EMAIL_FAILED").
				With("operation", "mark email verified").
				With("account_id", account.ID.String()).
				Wrap(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "email verified", "account_id", accountID.String())
	return nil
}

func errVerificationTokenUsed() error {
	return oops.Code("VERIFICATION_TOKEN_USED").Wrapf(ErrNotFound, "verification token has already been used")
}
