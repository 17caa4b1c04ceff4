// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/logging"
)

// Validate checks the cross-field rules that the schema cannot express.
// All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.JWT.Secret) < auth.MinSigningSecretLength {
		add("jwt.secret must be at least %d bytes", auth.MinSigningSecretLength)
	}
	if c.JWT.Issuer == "" {
		add("jwt.issuer is required")
	}
	if c.JWT.Audience == "" {
		add("jwt.audience is required")
	}
	if c.JWT.AccessTokenMinutes <= 0 {
		add("jwt.access_token_minutes must be positive")
	}
	if c.JWT.RefreshTokenDays <= 0 {
		add("jwt.refresh_token_days must be positive")
	}
	if c.Tokens.VerificationHours <= 0 {
		add("tokens.verification_hours must be positive")
	}
	if c.Tokens.ResetHours <= 0 {
		add("tokens.reset_hours must be positive")
	}

	if u, err := url.Parse(c.App.FrontendURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("app.frontend_url must be an absolute URL")
	}

	if c.HTTP.Addr == "" {
		add("http.addr is required")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		add("log.format must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level must be debug, info, warn or error")
	}

	switch c.Store.Driver {
	case StorePostgres:
		if c.Database.URL == "" {
			add("database.url is required when store.driver is postgres")
		}
	case StoreMemory:
	default:
		add("store.driver must be postgres or memory")
	}
	if c.Database.MaxConns < 0 {
		add("database.max_conns must not be negative")
	}

	switch c.Email.Driver {
	case EmailSMTP:
		if c.SMTP.Host == "" {
			add("smtp.host is required when email.driver is smtp")
		}
		if c.SMTP.SenderEmail == "" {
			add("smtp.sender_email is required when email.driver is smtp")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			add("smtp.port must be between 1 and 65535")
		}
	case EmailLog:
	default:
		add("email.driver must be smtp or log")
	}

	if len(problems) > 0 {
		return oops.Code("CONFIG_INVALID").
			With("problems", problems).
			Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
