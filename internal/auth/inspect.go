// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// TokenSummary describes a stored token without its value.
type TokenSummary struct {
	State     TokenState
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AccountOverview is an operator view of an account and its latest
// verification and reset tokens. Token summaries are nil when none exist.
type AccountOverview struct {
	Account            *Account
	LatestVerification *TokenSummary
	LatestReset        *TokenSummary
}

// InspectAccount loads an account by email together with the state of its
// most recent verification and reset tokens.
func (s *Service) InspectAccount(ctx context.Context, email string) (*AccountOverview, error) {
	account, err := s.store.Accounts().GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrapf(ErrNotFound, "account not found")
		}
		return nil, oops.Code("INSPECT_FAILED").With("operation", "get account by email").Wrap(err)
	}

	now := s.clock.Now()
	overview := &AccountOverview{Account: account}

	verification, err := s.store.VerificationTokens().GetLatestByAccount(ctx, account.ID)
	switch {
	case err == nil:
		overview.LatestVerification = summarize(&verification.OneTimeToken, now)
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("INSPECT_FAILED").With("operation", "get latest verification token").Wrap(err)
	}

	reset, err := s.store.ResetTokens().GetLatestByAccount(ctx, account.ID)
	switch {
	case err == nil:
		overview.LatestReset = summarize(&reset.OneTimeToken, now)
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("INSPECT_FAILED").With("operation", "get latest reset token").Wrap(err)
	}

	return overview, nil
}

func summarize(t *OneTimeToken, now time.Time) *TokenSummary {
	return &TokenSummary{
		State:     t.State(now),
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}
