// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

// Package postgres provides PostgreSQL implementations of auth repositories.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
)

// Querier is the query surface shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is a Querier that can begin transactions. *pgxpool.Pool satisfies it.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store implements auth.Store on PostgreSQL. Repositories returned by the
// Store methods run each statement in its own implicit transaction.
type Store struct {
	db DB
	repositories
}

var _ auth.Store = (*Store)(nil)

// NewStore creates a Store backed by db.
func NewStore(db DB) *Store {
	return &Store{db: db, repositories: newRepositories(db)}
}

// WithinTx runs fn in a database transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(tx auth.Repositories) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Roll back even when ctx is already cancelled.
		_ = tx.Rollback(context.WithoutCancel(ctx)) //nolint:errcheck // fn's error takes precedence
	}()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	committed = true
	return nil
}

type repositories struct {
	accounts     *AccountRepository
	profiles     *ProfileRepository
	refresh      *RefreshTokenRepository
	verification *VerificationTokenRepository
	reset        *ResetTokenRepository
}

func newRepositories(q Querier) repositories {
	return repositories{
		accounts:     NewAccountRepository(q),
		profiles:     NewProfileRepository(q),
		refresh:      NewRefreshTokenRepository(q),
		verification: NewVerificationTokenRepository(q),
		reset:        NewResetTokenRepository(q),
	}
}

func (r repositories) Accounts() auth.AccountRepository { return r.accounts }
func (r repositories) Profiles() auth.ProfileRepository { return r.profiles }
func (r repositories) RefreshTokens() auth.RefreshTokenRepository { return r.refresh }
func (r repositories) VerificationTokens() auth.VerificationTokenRepository { return r.verification }
func (r repositories) ResetTokens() auth.PasswordResetTokenRepository { return r.reset }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
