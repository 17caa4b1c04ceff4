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

type accountRepo struct {
	view view
}

func (r *accountRepo) Create(_ context.Context, account *auth.Account) error {
	return r.view.with(func(t *tables) error {
		email := auth.NormalizeEmail(account.Email)
		if _, taken := t.accountsByEmail[email]; taken {
			return oops.Code("EMAIL_ALREADY_REGISTERED").Wrap(auth.ErrConflict)
		}
		stored := *account
		stored.Email = email
		t.accounts[account.ID] = stored
		t.accountsByEmail[email] = account.ID
		return nil
	})
}

func (r *accountRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.Account, error) {
	var out *auth.Account
	err := r.view.with(func(t *tables) error {
		account, ok := t.accounts[id]
		if !ok {
			return oops.Code("ACCOUNT_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
		}
		out = &account
		return nil
	})
	return out, err
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	var out *auth.Account
	err := r.view.with(func(t *tables) error {
		id, ok := t.accountsByEmail[auth.NormalizeEmail(email)]
		if !ok {
			return oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
		}
		account := t.accounts[id]
		out = &account
		return nil
	})
	return out, err
}

func (r *accountRepo) IsEmailUnique(_ context.Context, email string) (bool, error) {
	unique := false
	err := r.view.with(func(t *tables) error {
		_, taken := t.accountsByEmail[auth.NormalizeEmail(email)]
		unique = !taken
		return nil
	})
	return unique, err
}

func (r *accountRepo) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string, at time.Time) error {
	return r.update(id, func(a *auth.Account) {
		hash := passwordHash
		a.PasswordHash = &hash
		a.UpdatedAt = at
	})
}

func (r *accountRepo) SetEmailVerification(_ context.Context, id ulid.ULID, status auth.VerificationStatus, at time.Time) error {
	return r.update(id, func(a *auth.Account) {
		a.EmailVerification = status
		a.UpdatedAt = at
	})
}

func (r *accountRepo) update(id ulid.ULID, mutate func(a *auth.Account)) error {
	return r.view.with(func(t *tables) error {
		account, ok := t.accounts[id]
		if !ok {
			return oops.Code("ACCOUNT_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
		}
		mutate(&account)
		t.accounts[id] = account
		return nil
	})
}

type profileRepo struct {
	view view
}

func (r *profileRepo) CreateMember(_ context.Context, profile *auth.MemberProfile) error {
	return r.view.with(func(t *tables) error {
		if err := checkProfileSlot(t, profile.AccountID); err != nil {
			return err
		}
		t.members[profile.AccountID] = *profile
		return nil
	})
}

func (r *profileRepo) CreateOwner(_ context.Context, profile *auth.OwnerProfile) error {
	return r.view.with(func(t *tables) error {
		if err := checkProfileSlot(t, profile.AccountID); err != nil {
			return err
		}
		t.owners[profile.AccountID] = *profile
		return nil
	})
}

// checkProfileSlot enforces that the account exists and owns no profile yet.
func checkProfileSlot(t *tables, accountID ulid.ULID) error {
	if _, ok := t.accounts[accountID]; !ok {
		return oops.Code("ACCOUNT_NOT_FOUND").With("account_id", accountID.String()).Wrap(auth.ErrNotFound)
	}
	_, isMember := t.members[accountID]
	_, isOwner := t.owners[accountID]
	if isMember || isOwner {
		return oops.Code("PROFILE_EXISTS").With("account_id", accountID.String()).Wrap(auth.ErrConflict)
	}
	return nil
}

func (r *profileRepo) GetMember(_ context.Context, accountID ulid.ULID) (*auth.MemberProfile, error) {
	var out *auth.MemberProfile
	err := r.view.with(func(t *tables) error {
		profile, ok := t.members[accountID]
		if !ok {
			return oops.Code("PROFILE_NOT_FOUND").With("account_id", accountID.String()).Wrap(auth.ErrNotFound)
		}
		out = &profile
		return nil
	})
	return out, err
}

func (r *profileRepo) GetOwner(_ context.Context, accountID ulid.ULID) (*auth.OwnerProfile, error) {
	var out *auth.OwnerProfile
	err := r.view.with(func(t *tables) error {
		profile, ok := t.owners[accountID]
		if !ok {
			return oops.Code("PROFILE_NOT_FOUND").With("account_id", accountID.String()).Wrap(auth.ErrNotFound)
		}
		out = &profile
		return nil
	})
	return out, err
}
