// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Default refresh token lifetime.
const DefaultRefreshTokenLifetime = 7 * 24 * time.Hour

// ServiceConfig holds lifetimes and link settings for Service.
type ServiceConfig struct {
	RefreshTokenLifetime      time.Duration
	VerificationTokenLifetime time.Duration
	ResetTokenLifetime        time.Duration
	FrontendURL               string
}

func (c *ServiceConfig) applyDefaults() {
	if c.RefreshTokenLifetime <= 0 {
		c.RefreshTokenLifetime = DefaultRefreshTokenLifetime
	}
	if c.VerificationTokenLifetime <= 0 {
		c.VerificationTokenLifetime = DefaultVerificationTokenLifetime
	}
	if c.ResetTokenLifetime <= 0 {
		c.ResetTokenLifetime = DefaultResetTokenLifetime
	}
}

// ServiceDeps are the collaborators of Service. Identities, Clock and Logger
// are optional.
type ServiceDeps struct {
	Store      Store
	Hasher     PasswordHasher
	Tokens     TokenGenerator
	Issuer     AccessTokenIssuer
	Email      EmailDispatcher
	Identities IdentityVerifier
	Clock      Clock
	Logger     *slog.Logger
}

// Service orchestrates registration, login, token rotation, password reset
// and email verification. Each operation commits in a single transaction.
type Service struct {
	store      Store
	hasher     PasswordHasher
	tokens     TokenGenerator
	issuer     AccessTokenIssuer
	email      EmailDispatcher
	identities IdentityVerifier
	clock      Clock
	logger     *slog.Logger
	links      Links
	cfg        ServiceConfig
}

// NewService creates a Service.
func NewService(deps ServiceDeps, cfg ServiceConfig) (*Service, error) {
	if deps.Store == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("store is required")
	}
	if deps.Hasher == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("password hasher is required")
	}
	if deps.Tokens == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("token generator is required")
	}
	if deps.Issuer == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("access token issuer is required")
	}
	if deps.Email == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("email dispatcher is required")
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	cfg.applyDefaults()

	return &Service{
		store:      deps.Store,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		issuer:     deps.Issuer,
		email:      deps.Email,
		identities: deps.Identities,
		clock:      deps.Clock,
		logger:     deps.Logger,
		links:      Links{FrontendURL: cfg.FrontendURL},
		cfg:        cfg,
	}, nil
}

// AuthResult is returned by every operation that issues a token pair.
type AuthResult struct {
	AccessToken          string
	AccessTokenExpiresAt time.Time
	RefreshToken         string
	AccountID            ulid.ULID
	Email                string
	AccountType          AccountType
}

// issueSession creates a refresh token row and signs an access token.
func (s *Service) issueSession(ctx context.Context, tx Repositories, account *Account, now time.Time) (*AuthResult, error) {
	value, err := s.tokens.NewToken()
	if err != nil {
		return nil, oops.Code("SESSION_ISSUE_FAILED").With("operation", "generate refresh token").Wrap(err)
	}

	refresh := &RefreshToken{
		ID:        ulid.Make(),
		AccountID: account.ID,
		Token:     value,
		ExpiresAt: now.Add(s.cfg.RefreshTokenLifetime),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.RefreshTokens().Create(ctx, refresh); err != nil {
		return nil, oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "create refresh token").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	access, err := s.issuer.Issue(account)
	if err != nil {
		return nil, oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "issue access token").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	s.logger.DebugContext(ctx, "token pair issued",
		"account_id", account.ID.String(),
		"jti", access.ID,
		"refresh_expires_at", refresh.ExpiresAt,
	)

	return &AuthResult{
		AccessToken:          access.Token,
		AccessTokenExpiresAt: access.ExpiresAt,
		RefreshToken:         value,
		AccountID:            account.ID,
		Email:                account.Email,
		AccountType:          account.Type,
	}, nil
}

// loadAccount fetches an account by id, reporting absence as ErrNotFound.
func loadAccount(ctx context.Context, tx Repositories, id ulid.ULID) (*Account, error) {
	account, err := tx.Accounts().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_NOT_FOUND").
				With("account_id", id.String()).
				Wrapf(ErrNotFound, "account not found")
		}
		return nil, oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("account_id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// CurrentAccount returns the account of an authenticated caller.
func (s *Service) CurrentAccount(ctx context.Context, accountID ulid.ULID) (*Account, error) {
	return loadAccount(ctx, s.store, accountID)
}
