// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

func errInvalidRefreshToken() error {
	return oops.Code("REFRESH_TOKEN_INVALID").Wrapf(ErrUnauthorized, "invalid refresh token")
}

// RefreshToken rotates an Active refresh token: the presented token is
// consumed and a new token pair is issued in the same transaction. The
// consume is a conditional write, so of two concurrent calls with the same
// token exactly one succeeds.
func (s *Service) RefreshToken(ctx context.Context, rawToken string) (*AuthResult, error) {
	if !s.tokens.IsWellFormed(rawToken) {
		return nil, errInvalidRefreshToken()
	}

	var result *AuthResult
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		token, err := tx.RefreshTokens().GetByToken(ctx, rawToken)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return errInvalidRefreshToken()
			}
			return oops.Code("REFRESH_FAILED").With("operation", "get refresh token").Wrap(err)
		}

		now := s.clock.Now()
		if state := token.State(now); state != TokenActive {
			s.logger.WarnContext(ctx, "refresh token rejected",
				"account_id", token.AccountID.String(),
				"state", state.String(),
			)
			return errInvalidRefreshToken()
		}

		account, err := loadAccount(ctx, tx, token.AccountID)
		if err != nil {
			return err
		}

		if err := tx.RefreshTokens().Consume(ctx, token.ID, now); err != nil {
			if errors.Is(err, ErrTokenInactive) {
				s.logger.WarnContext(ctx, "refresh token replayed concurrently",
					"account_id", token.AccountID.String(),
				)
				return errInvalidRefreshToken()
			}
			return oops.Code("REFRESH_FAILED").With("operation", "consume refresh token").Wrap(err)
		}

		result, err = s.issueSession(ctx, tx, account, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "refresh token rotated", "account_id", result.AccountID.String())
	return result, nil
}

// RevokeRefreshToken marks a refresh token revoked. Unknown tokens are
// ErrNotFound; revoking an already revoked token succeeds.
func (s *Service) RevokeRefreshToken(ctx context.Context, rawToken string) error {
	var revoked *RefreshToken
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		token, err := tx.RefreshTokens().GetByToken(ctx, rawToken)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("REFRESH_TOKEN_NOT_FOUND").Wrapf(ErrNotFound, "refresh token not found")
			}
			return oops.Code("REVOKE_FAILED").With("operation", "get refresh token").Wrap(err)
		}
		if token.IsRevoked {
			return nil
		}

		if err := tx.RefreshTokens().Revoke(ctx, token.ID, s.clock.Now()); err != nil {
			return oops.Code("REVOKE_FAILED").
				With("operation", "revoke refresh token").
				With("account_id", token.AccountID.String()).
				Wrap(err)
		}
		revoked = token
		return nil
	})
	if err != nil {
		return err
	}

	if revoked != nil {
		s.logger.InfoContext(ctx, "refresh token revoked", "account_id", revoked.AccountID.String())
	}
	return nil
}
