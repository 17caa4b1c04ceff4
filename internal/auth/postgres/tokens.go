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

// RefreshTokenRepository implements auth.RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepository struct {
	q Querier
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(q Querier) *RefreshTokenRepository {
	return &RefreshTokenRepository{q: q}
}

// Create stores a new refresh token.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *auth.RefreshToken) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO refresh_tokens (id, account_id, token, expires_at, is_used, is_revoked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, token.ID.String(), token.AccountID.String(), token.Token, token.ExpiresAt,
		token.IsUsed, token.IsRevoked, token.CreatedAt, token.UpdatedAt)
	if err != nil {
		return oops.Code("REFRESH_TOKEN_CREATE_FAILED").
			With("operation", "insert refresh_token").
			With("account_id", token.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// GetByToken retrieves a refresh token by its value.
func (r *RefreshTokenRepository) GetByToken(ctx context.Context, value string) (*auth.RefreshToken, error) {
	var (
		idStr, accountIDStr string
		token               = auth.RefreshToken{Token: value}
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, account_id, expires_at, is_used, is_revoked, created_at, updated_at
		FROM refresh_tokens
		WHERE token = $1
	`, value).Scan(&idStr, &accountIDStr, &token.ExpiresAt, &token.IsUsed, &token.IsRevoked,
		&token.CreatedAt, &token.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("REFRESH_TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("REFRESH_TOKEN_SCAN_FAILED").With("operation", "scan refresh_token").Wrap(err)
	}

	if token.ID, token.AccountID, err = parseTokenIDs(idStr, accountIDStr); err != nil {
		return nil, err
	}
	token.ExpiresAt = token.ExpiresAt.UTC()
	token.CreatedAt = token.CreatedAt.UTC()
	token.UpdatedAt = token.UpdatedAt.UTC()
	return &token, nil
}

// Consume marks the token used if it is still Active at now. Concurrent
// callers serialize on the row lock and all but one see no matching row.
func (r *RefreshTokenRepository) Consume(ctx context.Context, id ulid.ULID, now time.Time) error {
	result, err := r.q.Exec(ctx, `
		UPDATE refresh_tokens
		SET is_used = TRUE, updated_at = $2
		WHERE id = $1 AND NOT is_used AND NOT is_revoked AND expires_at > $2
	`, id.String(), now)
	if err != nil {
		return oops.Code("REFRESH_TOKEN_UPDATE_FAILED").
			With("operation", "consume refresh_token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("REFRESH_TOKEN_INACTIVE").With("id", id.String()).Wrap(auth.ErrTokenInactive)
	}
	return nil
}

// Revoke marks the token revoked.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id ulid.ULID, now time.Time) error {
	result, err := r.q.Exec(ctx, `
		UPDATE refresh_tokens SET is_revoked = TRUE, updated_at = $2 WHERE id = $1
	`, id.String(), now)
	if err != nil {
		return oops.Code("REFRESH_TOKEN_UPDATE_FAILED").
			With("operation", "revoke refresh_token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("REFRESH_TOKEN_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// oneTimeTokens holds the queries shared by the verification and reset
// token tables, which have identical shapes.
type oneTimeTokens struct {
	q      Querier
	table  string
	prefix string
}

func (t oneTimeTokens) create(ctx context.Context, token *auth.OneTimeToken) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO `+t.table+` (id, account_id, token, expires_at, is_used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, token.ID.String(), token.AccountID.String(), token.Token, token.ExpiresAt,
		token.IsUsed, token.CreatedAt, token.UpdatedAt)
	if err != nil {
		return oops.Code(t.prefix + "_CREATE_FAILED").
			With("operation", "insert "+t.table).
			With("account_id", token.AccountID.String()).
			Wrap(err)
	}
	return nil
}

func (t oneTimeTokens) getByToken(ctx context.Context, value string) (*auth.OneTimeToken, error) {
	row := t.q.QueryRow(ctx, `
		SELECT id, account_id, token, expires_at, is_used, created_at, updated_at
		FROM `+t.table+`
		WHERE token = $1
	`, value)

	token, err := t.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(t.prefix + "_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (t oneTimeTokens) getLatestByAccount(ctx context.Context, accountID ulid.ULID) (*auth.OneTimeToken, error) {
	row := t.q.QueryRow(ctx, `
		SELECT id, account_id, token, expires_at, is_used, created_at, updated_at
		FROM `+t.table+`
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, accountID.String())

	token, err := t.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(t.prefix + "_NOT_FOUND").
			With("account_id", accountID.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (t oneTimeTokens) consume(ctx context.Context, id ulid.ULID, now time.Time) error {
	result, err := t.q.Exec(ctx, `
		UPDATE `+t.table+`
		SET is_used = TRUE, updated_at = $2
		WHERE id = $1 AND NOT is_used AND expires_at > $2
	`, id.String(), now)
	if err != nil {
		return oops.Code(t.prefix + "_UPDATE_FAILED").
			With("operation", "consume "+t.table).
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(t.prefix + "_INACTIVE").With("id", id.String()).Wrap(auth.ErrTokenInactive)
	}
	return nil
}

// scan reads one token row. Callers are responsible for handling pgx.ErrNoRows.
func (t oneTimeTokens) scan(row pgx.Row) (*auth.OneTimeToken, error) {
	var (
		idStr, accountIDStr string
		token               auth.OneTimeToken
	)
	err := row.Scan(&idStr, &accountIDStr, &token.Token, &token.ExpiresAt, &token.IsUsed,
		&token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code(t.prefix + "_SCAN_FAILED").With("operation", "scan "+t.table).Wrap(err)
	}

	if token.ID, token.AccountID, err = parseTokenIDs(idStr, accountIDStr); err != nil {
		return nil, err
	}
	token.ExpiresAt = token.ExpiresAt.UTC()
	token.CreatedAt = token.CreatedAt.UTC()
	token.UpdatedAt = token.UpdatedAt.UTC()
	return &token, nil
}

func parseTokenIDs(idStr, accountIDStr string) (id, accountID ulid.ULID, err error) {
	id, err = ulid.Parse(idStr)
	if err != nil {
		return id, accountID, oops.Code("TOKEN_INVALID_ID").
			With("operation", "parse token id").
			With("id", idStr).
			Wrap(err)
	}
	accountID, err = ulid.Parse(accountIDStr)
	if err != nil {
		return id, accountID, oops.Code("TOKEN_INVALID_ACCOUNT_ID").
			With("operation", "parse account id").
			With("account_id", accountIDStr).
			Wrap(err)
	}
	return id, accountID, nil
}

// VerificationTokenRepository implements auth.VerificationTokenRepository using PostgreSQL.
type VerificationTokenRepository struct {
	tokens oneTimeTokens
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository.
func NewVerificationTokenRepository(q Querier) *VerificationTokenRepository {
	return &VerificationTokenRepository{tokens: oneTimeTokens{q: q, table: "verification_tokens", prefix: "VERIFICATION_TOKEN"}}
}

// Create stores a new verification token.
func (r *VerificationTokenRepository) Create(ctx context.Context, token *auth.VerificationToken) error {
	return r.tokens.create(ctx, &token.OneTimeToken)
}

// GetByToken retrieves a verification token by its value.
func (r *VerificationTokenRepository) GetByToken(ctx context.Context, value string) (*auth.VerificationToken, error) {
	token, err := r.tokens.getByToken(ctx, value)
	if err != nil {
		return nil, err
	}
	return &auth.VerificationToken{OneTimeToken: *token}, nil
}

// GetLatestByAccount retrieves the most recently created verification token of an account.
func (r *VerificationTokenRepository) GetLatestByAccount(ctx context.Context, accountID ulid.ULID) (*auth.VerificationToken, error) {
	token, err := r.tokens.getLatestByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &auth.VerificationToken{OneTimeToken: *token}, nil
}

// Consume marks the token used if it is still Active at now.
func (r *VerificationTokenRepository) Consume(ctx context.Context, id ulid.ULID, now time.Time) error {
	return r.tokens.consume(ctx, id, now)
}

// ResetTokenRepository implements auth.PasswordResetTokenRepository using PostgreSQL.
type ResetTokenRepository struct {
	tokens oneTimeTokens
}

// NewResetTokenRepository creates a new ResetTokenRepository.
func NewResetTokenRepository(q Querier) *ResetTokenRepository {
	return &ResetTokenRepository{tokens: oneTimeTokens{q: q, table: "reset_password_tokens", prefix: "RESET_TOKEN"}}
}

// Create stores a new password reset token.
func (r *ResetTokenRepository) Create(ctx context.Context, token *auth.PasswordResetToken) error {
	return r.tokens.create(ctx, &token.OneTimeToken)
}

// GetByToken retrieves a password reset token by its value.
func (r *ResetTokenRepository) GetByToken(ctx context.Context, value string) (*auth.PasswordResetToken, error) {
	token, err := r.tokens.getByToken(ctx, value)
	if err != nil {
		return nil, err
	}
	return &auth.PasswordResetToken{OneTimeToken: *token}, nil
}

// GetLatestByAccount retrieves the most recently created reset token of an account.
func (r *ResetTokenRepository) GetLatestByAccount(ctx context.Context, accountID ulid.ULID) (*auth.PasswordResetToken, error) {
	token, err := r.tokens.getLatestByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &auth.PasswordResetToken{OneTimeToken: *token}, nil
}

// Consume marks the token used if it is still Active at now.
func (r *ResetTokenRepository) Consume(ctx context.Context, id ulid.ULID, now time.Time) error {
	return r.tokens.consume(ctx, id, now)
}

// Compile-time interface checks.
var (
	_ auth.RefreshTokenRepository       = (*RefreshTokenRepository)(nil)
	_ auth.VerificationTokenRepository  = (*VerificationTokenRepository)(nil)
	_ auth.PasswordResetTokenRepository = (*ResetTokenRepository)(nil)
)
