// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MinSigningSecretLength is the shortest accepted HMAC secret, in bytes.
const MinSigningSecretLength = 32

// TokenIssuerConfig configures a TokenIssuer.
type TokenIssuerConfig struct {
	Secret              []byte
	Issuer              string
	Audience            string
	AccessTokenLifetime time.Duration
}

// Validate checks that the configuration can sign tokens.
func (c TokenIssuerConfig) Validate() error {
	if len(c.Secret) == 0 {
		return oops.Code("TOKEN_ISSUER_CONFIG_INVALID").Errorf("signing secret is required")
	}
	if len(c.Secret) < MinSigningSecretLength {
		return oops.Code("TOKEN_ISSUER_CONFIG_INVALID").
			With("min_length", MinSigningSecretLength).
			Errorf("signing secret must be at least %d bytes", MinSigningSecretLength)
	}
	if c.Issuer == "" {
		return oops.Code("TOKEN_ISSUER_CONFIG_INVALID").Errorf("issuer is required")
	}
	if c.Audience == "" {
		return oops.Code("TOKEN_ISSUER_CONFIG_INVALID").Errorf("audience is required")
	}
	if c.AccessTokenLifetime <= 0 {
		return oops.Code("TOKEN_ISSUER_CONFIG_INVALID").
			With("lifetime", c.AccessTokenLifetime).
			Errorf("access token lifetime must be positive")
	}
	return nil
}

// AccessToken is a signed bearer token and its metadata.
type AccessToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Claims are the decoded identity claims of a valid access token.
type Claims struct {
	AccountID   ulid.ULID
	Email       string
	AccountType AccountType
	Role        string
	TokenID     string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// AccessTokenIssuer issues and validates signed access tokens.
type AccessTokenIssuer interface {
	Issue(account *Account) (AccessToken, error)
	ValidateAndDecode(token string) (*Claims, error)
}

type accessClaims struct {
	Email       string `json:"email"`
	AccountType string `json:"accountType"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer issues HS256 access tokens. It is immutable after construction.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
	clock    Clock
	parser   *jwt.Parser
}

var _ AccessTokenIssuer = (*TokenIssuer)(nil)

// NewTokenIssuer creates a TokenIssuer. A missing or short secret is an error
// so misconfiguration fails at startup.
func NewTokenIssuer(cfg TokenIssuerConfig, clock Clock) (*TokenIssuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &TokenIssuer{
		secret:   secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: cfg.AccessTokenLifetime,
		clock:    clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(0),
			jwt.WithTimeFunc(clock.Now),
		),
	}, nil
}

// Issue signs an access token for account.
func (i *TokenIssuer) Issue(account *Account) (AccessToken, error) {
	now := i.clock.Now()
	jti := uuid.NewString()

	claims := accessClaims{
		Email:       account.Email,
		AccountType: account.Type.String(),
		Role:        account.Type.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return AccessToken{}, oops.Code("ACCESS_TOKEN_SIGN_FAILED").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	return AccessToken{
		Token:     signed,
		ID:        jti,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ValidateAndDecode verifies signature, issuer, audience and expiry with no
// clock-skew tolerance. Every failure yields the same ErrUnauthorized error.
func (i *TokenIssuer) ValidateAndDecode(token string) (*Claims, error) {
	var c accessClaims
	parsed, err := i.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errInvalidAccessToken()
	}

	accountID, err := ulid.Parse(c.Subject)
	if err != nil {
		return nil, errInvalidAccessToken()
	}
	accountType, err := ParseAccountType(c.AccountType)
	if err != nil {
		return nil, errInvalidAccessToken()
	}

	claims := &Claims{
		AccountID:   accountID,
		Email:       c.Email,
		AccountType: accountType,
		Role:        c.Role,
		TokenID:     c.ID,
		ExpiresAt:   c.ExpiresAt.Time,
	}
	if c.IssuedAt != nil {
		claims.IssuedAt = c.IssuedAt.Time
	}
	return claims, nil
}

// Validate reports whether token is a valid access token.
func (i *TokenIssuer) Validate(token string) bool {
	_, err := i.ValidateAndDecode(token)
	return err == nil
}

func errInvalidAccessToken() error {
	return oops.Code("ACCESS_TOKEN_INVALID").Wrapf(ErrUnauthorized, "invalid access token")
}
