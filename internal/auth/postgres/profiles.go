// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
)

// ProfileRepository implements auth.ProfileRepository using PostgreSQL.
// An account holds at most one profile across the members and owners tables.
type ProfileRepository struct {
	q Querier
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(q Querier) *ProfileRepository {
	return &ProfileRepository{q: q}
}

// CreateMember stores a member profile.
func (r *ProfileRepository) CreateMember(ctx context.Context, profile *auth.MemberProfile) error {
	result, err := r.q.Exec(ctx, `
		INSERT INTO members (account_id, name, surname, email, gsm, membership_date)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::timestamptz
		WHERE NOT EXISTS (SELECT 1 FROM owners WHERE account_id = $1::text)
	`, profile.AccountID.String(), profile.Name, profile.Surname, profile.Email, profile.Gsm, profile.MembershipDate)
	return profileInsertResult(profile.AccountID, "insert member", result.RowsAffected(), err)
}

// CreateOwner stores an owner profile.
func (r *ProfileRepository) CreateOwner(ctx context.Context, profile *auth.OwnerProfile) error {
	result, err := r.q.Exec(ctx, `
		INSERT INTO owners (account_id, name, surname, email, gsm, gender, birth_date, timezone, photo)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::smallint, $7::date, $8::text, $9::text
		WHERE NOT EXISTS (SELECT 1 FROM members WHERE account_id = $1::text)
	`, profile.AccountID.String(), profile.Name, profile.Surname, profile.Email, profile.Gsm,
		int16(profile.Gender), profile.BirthDate, profile.Timezone, profile.Photo)
	return profileInsertResult(profile.AccountID, "insert owner", result.RowsAffected(), err)
}

func profileInsertResult(accountID ulid.ULID, operation string, rows int64, err error) error {
	switch {
	case isUniqueViolation(err):
		return oops.Code("PROFILE_EXISTS").With("account_id", accountID.String()).Wrap(auth.ErrConflict)
	case isForeignKeyViolation(err):
		return oops.Code("ACCOUNT_NOT_FOUND").With("account_id", accountID.String()).Wrap(auth.ErrNotFound)
	case err != nil:
		return oops.Code("PROFILE_CREATE_FAILED").
			With("operation", operation).
			With("account_id", accountID.String()).
			Wrap(err)
	case rows == 0:
		return oops.Code("PROFILE_EXISTS").With("account_id", accountID.String()).Wrap(auth.ErrConflict)
	}
	return nil
}

// GetMember retrieves the member profile of an account.
func (r *ProfileRepository) GetMember(ctx context.Context, accountID ulid.ULID) (*auth.MemberProfile, error) {
	var (
		profile        = auth.MemberProfile{AccountID: accountID}
		membershipDate time.Time
	)
	err := r.q.QueryRow(ctx, `
		SELECT name, surname, email, gsm, membership_date
		FROM members
		WHERE account_id = $1
	`, accountID.String()).Scan(&profile.Name, &profile.Surname, &profile.Email, &profile.Gsm, &membershipDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROFILE_NOT_FOUND").With("account_id", accountID.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PROFILE_SCAN_FAILED").With("operation", "scan member").Wrap(err)
	}
	profile.MembershipDate = membershipDate.UTC()
	return &profile, nil
}

// GetOwner retrieves the owner profile of an account.
func (r *ProfileRepository) GetOwner(ctx context.Context, accountID ulid.ULID) (*auth.OwnerProfile, error) {
	var (
		profile = auth.OwnerProfile{AccountID: accountID}
		gender  int16
	)
	err := r.q.QueryRow(ctx, `
		SELECT name, surname, email, gsm, gender, birth_date, timezone, photo
		FROM owners
		WHERE account_id = $1
	`, accountID.String()).Scan(&profile.Name, &profile.Surname, &profile.Email, &profile.Gsm,
		&gender, &profile.BirthDate, &profile.Timezone, &profile.Photo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROFILE_NOT_FOUND").With("account_id", accountID.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PROFILE_SCAN_FAILED").With("operation", "scan owner").Wrap(err)
	}
	profile.Gender = auth.Gender(gender)
	return &profile, nil
}

// Compile-time interface check.
var _ auth.ProfileRepository = (*ProfileRepository)(nil)
