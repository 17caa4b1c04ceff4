// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

// Package memory provides an in-process implementation of auth.Store.
//
// Transactions are serialized: WithinTx holds the store lock for the whole
// callback and works on a copy of the tables, which replaces the committed
// tables only when the callback succeeds.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
)

type tables struct {
	accounts            map[ulid.ULID]auth.Account
	accountsByEmail     map[string]ulid.ULID
	members             map[ulid.ULID]auth.MemberProfile
	owners              map[ulid.ULID]auth.OwnerProfile
	refresh             map[ulid.ULID]auth.RefreshToken
	refreshByValue      map[string]ulid.ULID
	verification        map[ulid.ULID]auth.VerificationToken
	verificationByValue map[string]ulid.ULID
	reset               map[ulid.ULID]auth.PasswordResetToken
	resetByValue        map[string]ulid.ULID
}

func newTables() *tables {
	return &tables{
		accounts:            make(map[ulid.ULID]auth.Account),
		accountsByEmail:     make(map[string]ulid.ULID),
		members:             make(map[ulid.ULID]auth.MemberProfile),
		owners:              make(map[ulid.ULID]auth.OwnerProfile),
		refresh:             make(map[ulid.ULID]auth.RefreshToken),
		refreshByValue:      make(map[string]ulid.ULID),
		verification:        make(map[ulid.ULID]auth.VerificationToken),
		verificationByValue: make(map[string]ulid.ULID),
		reset:               make(map[ulid.ULID]auth.PasswordResetToken),
		resetByValue:        make(map[string]ulid.ULID),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		accounts:            maps.Clone(t.accounts),
		accountsByEmail:     maps.Clone(t.accountsByEmail),
		members:             maps.Clone(t.members),
		owners:              maps.Clone(t.owners),
		refresh:             maps.Clone(t.refresh),
		refreshByValue:      maps.Clone(t.refreshByValue),
		verification:        maps.Clone(t.verification),
		verificationByValue: maps.Clone(t.verificationByValue),
		reset:               maps.Clone(t.reset),
		resetByValue:        maps.Clone(t.resetByValue),
	}
}

// Store is an in-memory auth.Store.
type Store struct {
	mu   sync.Mutex
	data *tables
}

var _ auth.Store = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{data: newTables()}
}

// WithinTx runs fn against a private copy of the tables and commits the copy
// when fn returns nil and ctx is still live.
func (s *Store) WithinTx(ctx context.Context, fn func(tx auth.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(&repositories{view: fixedView{t: staged}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	s.data = staged
	return nil
}

// Accounts returns an autocommit account repository.
func (s *Store) Accounts() auth.AccountRepository {
	return &accountRepo{view: s.autocommit()}
}

// Profiles returns an autocommit profile repository.
func (s *Store) Profiles() auth.ProfileRepository {
	return &profileRepo{view: s.autocommit()}
}

// RefreshTokens returns an autocommit refresh token repository.
func (s *Store) RefreshTokens() auth.RefreshTokenRepository {
	return &refreshRepo{view: s.autocommit()}
}

// VerificationTokens returns an autocommit verification token repository.
func (s *Store) VerificationTokens() auth.VerificationTokenRepository {
	return &verificationRepo{view: s.autocommit()}
}

// ResetTokens returns an autocommit reset token repository.
func (s *Store) ResetTokens() auth.PasswordResetTokenRepository {
	return &resetRepo{view: s.autocommit()}
}

func (s *Store) autocommit() lockedView {
	return lockedView{s: s}
}

// view gives repositories access to a table set for the duration of one call.
type view interface {
	with(fn func(t *tables) error) error
}

// fixedView is bound to staged tables; the store lock is already held.
type fixedView struct {
	t *tables
}

func (v fixedView) with(fn func(t *tables) error) error {
	return fn(v.t)
}

// lockedView takes the store lock for each call and works on committed tables.
type lockedView struct {
	s *Store
}

func (v lockedView) with(fn func(t *tables) error) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.data)
}

type repositories struct {
	view view
}

func (r *repositories) Accounts() auth.AccountRepository {
	return &accountRepo{view: r.view}
}

func (r *repositories) Profiles() auth.ProfileRepository {
	return &profileRepo{view: r.view}
}

func (r *repositories) RefreshTokens() auth.RefreshTokenRepository {
	return &refreshRepo{view: r.view}
}

func (r *repositories) VerificationTokens() auth.VerificationTokenRepository {
	return &verificationRepo{view: r.view}
}

func (r *repositories) ResetTokens() auth.PasswordResetTokenRepository {
	return &resetRepo{view: r.view}
}
