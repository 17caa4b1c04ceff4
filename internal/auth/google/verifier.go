// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

// Package google verifies Google ID tokens through the tokeninfo endpoint.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/clubpass/clubpass/internal/auth"
)

// DefaultEndpoint is Google's tokeninfo endpoint.
const DefaultEndpoint = "https://oauth2.googleapis.com/tokeninfo"

var validIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// Config configures a Verifier.
type Config struct {
	ClientID string
	// Endpoint overrides DefaultEndpoint.
	Endpoint   string
	HTTPClient *http.Client
	// Attempts bounds requests per token. Zero means 3.
	Attempts  uint64
	RetryBase time.Duration
	Now       func() time.Time
}

// Verifier implements auth.IdentityVerifier for Google ID tokens.
type Verifier struct {
	cfg    Config
	logger *slog.Logger
}

var _ auth.IdentityVerifier = (*Verifier)(nil)

// NewVerifier returns a Verifier accepting tokens issued to cfg.ClientID.
func NewVerifier(cfg Config, logger *slog.Logger) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, oops.Code("GOOGLE_CONFIG_INVALID").Errorf("google client id is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 200 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{cfg: cfg, logger: logger}, nil
}

// tokenInfo is the tokeninfo response. Google encodes booleans and
// timestamps as strings.
type tokenInfo struct {
	Issuer        string `json:"iss"`
	Audience      string `json:"aud"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Expiry        string `json:"exp"`
}

func invalidToken(reason string) error {
	return oops.Code("GOOGLE_TOKEN_INVALID").With("reason", reason).Wrapf(auth.ErrUnauthorized, "google id token rejected: %s", reason)
}

// Verify validates idToken and returns the identity it asserts.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*auth.FederatedIdentity, error) {
	if idToken == "" {
		return nil, invalidToken("empty token")
	}

	info, err := v.fetch(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if info.Audience != v.cfg.ClientID {
		return nil, invalidToken("audience mismatch")
	}
	if !validIssuers[info.Issuer] {
		return nil, invalidToken("unexpected issuer")
	}
	exp, err := strconv.ParseInt(info.Expiry, 10, 64)
	if err != nil {
		return nil, invalidToken("malformed expiry")
	}
	if !v.cfg.Now().Before(time.Unix(exp, 0)) {
		return nil, invalidToken("expired")
	}
	if info.Subject == "" {
		return nil, invalidToken("missing subject")
	}

	return &auth.FederatedIdentity{
		Provider:      auth.ProviderGoogle,
		Subject:       info.Subject,
		Email:         info.Email,
		EmailVerified: info.EmailVerified == "true",
	}, nil
}

// errRejected marks a 4xx answer; it is not retried.
var errRejected = errors.New("token rejected by tokeninfo")

func (v *Verifier) fetch(ctx context.Context, idToken string) (*tokenInfo, error) {
	endpoint := v.cfg.Endpoint + "?" + url.Values{"id_token": {idToken}}.Encode()

	var info tokenInfo
	backoff := retry.WithMaxRetries(v.cfg.Attempts-1, retry.NewExponential(v.cfg.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return err
		}
		resp, err := v.cfg.HTTPClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
				return fmt.Errorf("decode tokeninfo response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_, _ = io.Copy(io.Discard, resp.Body)
			v.logger.WarnContext(ctx, "tokeninfo unavailable, retrying", "status", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("tokeninfo returned %d", resp.StatusCode))
		default:
			return fmt.Errorf("%w: status %d", errRejected, resp.StatusCode)
		}
	})
	if errors.Is(err, errRejected) {
		return nil, invalidToken("rejected by google")
	}
	if err != nil {
		return nil, oops.Code("GOOGLE_UNAVAILABLE").With("endpoint", v.cfg.Endpoint).Wrap(err)
	}
	return &info, nil
}
