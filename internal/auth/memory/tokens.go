// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package memory

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
)

type refreshRepo struct {
	view view
}

func (r *refreshRepo) Create(_ context.Context, token *auth.RefreshToken) error {
	return r.view.with(func(t *tables) error {
		if _, dup := t.refreshByValue[token.Token]; dup {
			return oops.Code("REFRESH_TOKEN_DUPLICATE").Errorf("refresh token value already exists")
		}
		t.refresh[token.ID] = *token
		t.refreshByValue[token.Token] = token.ID
		return nil
	})
}

func (r *refreshRepo) GetByToken(_ context.Context, value string) (*auth.RefreshToken, error) {
	var out *auth.RefreshToken
	err := r.view.with(func(t *tables) error {
		id, ok := t.refreshByValue[value]
		if !ok {
			return oops.Code("REFRESH_TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		token := t.refresh[id]
		out = &token
		return nil
	})
	return out, err
}

func (r *refreshRepo) Consume(_ context.Context, id ulid.ULID, now time.Time) error {
	return r.view.with(func(t *tables) error {
		token, ok := t.refresh[id]
		if !ok || token.State(now) != auth.TokenActive {
			return oops.Code("REFRESH_TOKEN_INACTIVE").With("id", id.String()).Wrap(auth.ErrTokenInactive)
		}
		token.IsUsed = true
		token.UpdatedAt = now
		t.refresh[id] = token
		return nil
	})
}

func (r *refreshRepo) Revoke(_ context.Context, id ulid.ULID, now time.Time) error {
	return r.view.with(func(t *tables) error {
		token, ok := t.refresh[id]
		if !ok {
			return oops.Code("REFRESH_TOKEN_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
		}
		token.IsRevoked = true
		token.UpdatedAt = now
		t.refresh[id] = token
		return nil
	})
}

type verificationRepo struct {
	view view
}

func (r *verificationRepo) Create(_ context.Context, token *auth.VerificationToken) error {
	return r.view.with(func(t *tables) error {
		if _, dup := t.verificationByValue[token.Token]; dup {
			return oops.Code("VERIFICATION_TOKEN_DUPLICATE").Errorf("verification token value already exists")
		}
		t.verification[token.ID] = *token
		t.verificationByValue[token.Token] = token.ID
		return nil
	})
}

func (r *verificationRepo) GetByToken(_ context.Context, value string) (*auth.VerificationToken, error) {
	var out *auth.VerificationToken
	err := r.view.with(func(t *tables) error {
		id, ok := t.verificationByValue[value]
		if !ok {
			return oops.Code("VERIFICATION_TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		token := t.verification[id]
		out = &token
		return nil
	})
	return out, err
}

func (r *verificationRepo) GetLatestByAccount(_ context.Context, accountID ulid.ULID) (*auth.VerificationToken, error) {
	var out *auth.VerificationToken
	err := r.view.with(func(t *tables) error {
		for _, token := range t.verification {
			if token.AccountID == accountID && (out == nil || newer(&token.OneTimeToken, &out.OneTimeToken)) {
				latest := token
				out = &latest
			}
		}
		if out == nil {
			return oops.Code("VERIFICATION_TOKEN_NOT_FOUND").
				With("account_id", accountID.String()).
				Wrap(auth.ErrNotFound)
		}
		return nil
	})
	return out, err
}

func (r *verificationRepo) Consume(_ context.Context, id ulid.ULID, now time.Time) error {
	return r.view.with(func(t *tables) error {
		token, ok := t.verification[id]
		if !ok || token.State(now) != auth.TokenActive {
			return oops.Code("VERIFICATION_TOKEN_INACTIVE").With("id", id.String()).Wrap(auth.ErrTokenInactive)
		}
		token.IsUsed = true
		token.UpdatedAt = now
		t.verification[id] = token
		return nil
	})
}

type resetRepo struct {
	view view
}

func (r *resetRepo) Create(_ context.Context, token *auth.PasswordResetToken) error {
	return r.view.with(func(t *tables) error {
		if _, dup := t.resetByValue[token.Token]; dup {
			return oops.Code("RESET_TOKEN_DUPLICATE").Errorf("reset token value already exists")
		}
		t.reset[token.ID] = *token
		t.resetByValue[token.Token] = token.ID
		return nil
	})
}

func (r *resetRepo) GetByToken(_ context.Context, value string) (*auth.PasswordResetToken, error) {
	var out *auth.PasswordResetToken
	err := r.view.with(func(t *tables) error {
		id, ok := t.resetByValue[value]
		if !ok {
			return oops.Code("RESET_TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		token := t.reset[id]
		out = &token
		return nil
	})
	return out, err
}

func (r *resetRepo) GetLatestByAccount(_ context.Context, accountID ulid.ULID) (*auth.PasswordResetToken, error) {
	var out *auth.PasswordResetToken
	err := r.view.with(func(t *tables) error {
		for _, token := range t.reset {
			if token.AccountID == accountID && (out == nil || newer(&token.OneTimeToken, &out.OneTimeToken)) {
				latest := token
				out = &latest
			}
		}
		if out == nil {
			return oops.Code("RESET_TOKEN_NOT_FOUND").
				With("account_id", accountID.String()).
				Wrap(auth.ErrNotFound)
		}
		return nil
	})
	return out, err
}

func (r *resetRepo) Consume(_ context.Context, id ulid.ULID, now time.Time) error {
	return r.view.with(func(t *tables) error {
		token, ok := t.reset[id]
		if !ok || token.State(now) != auth.TokenActive {
			return oops.Code("RESET_TOKEN_INACTIVE").With("id", id.String()).Wrap(auth.ErrTokenInactive)
		}
		token.IsUsed = true
		token.UpdatedAt = now
		t.reset[id] = token
		return nil
	})
}

// newer orders tokens by creation time, then by id.
func newer(a, b *auth.OneTimeToken) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Compare(b.ID) > 0
}
