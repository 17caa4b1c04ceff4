// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package main

import (
	"io"
	"log/slog"

	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/auth/google"
	"github.com/clubpass/clubpass/internal/config"
	"github.com/clubpass/clubpass/internal/mailer"
)

// buildService assembles the orchestrator and its token issuer from a
// validated configuration. The log email driver writes to mailOut.
func buildService(cfg *config.Config, st auth.Store, mailOut io.Writer, logger *slog.Logger) (*auth.Service, *auth.TokenIssuer, error) {
	clock := auth.SystemClock{}

	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		Secret:              []byte(cfg.JWT.Secret),
		Issuer:              cfg.JWT.Issuer,
		Audience:            cfg.JWT.Audience,
		AccessTokenLifetime: cfg.AccessTokenLifetime(),
	}, clock)
	if err != nil {
		return nil, nil, err
	}

	email, err := newEmailDispatcher(cfg, mailOut, logger)
	if err != nil {
		return nil, nil, err
	}

	var identities auth.IdentityVerifier
	if cfg.Google.ClientID != "" {
		verifier, err := google.NewVerifier(google.Config{ClientID: cfg.Google.ClientID}, logger)
		if err != nil {
			return nil, nil, err
		}
		identities = verifier
	}

	svc, err := auth.NewService(auth.ServiceDeps{
		Store:      st,
		Hasher:     auth.NewPBKDF2Hasher(),
		Tokens:     auth.NewOpaqueTokenGenerator(),
		Issuer:     issuer,
		Email:      email,
		Identities: identities,
		Clock:      clock,
		Logger:     logger,
	}, auth.ServiceConfig{
		RefreshTokenLifetime:      cfg.RefreshTokenLifetime(),
		VerificationTokenLifetime: cfg.VerificationTokenLifetime(),
		ResetTokenLifetime:        cfg.ResetTokenLifetime(),
		FrontendURL:               cfg.App.FrontendURL,
	})
	if err != nil {
		return nil, nil, err
	}
	return svc, issuer, nil
}

func newEmailDispatcher(cfg *config.Config, mailOut io.Writer, logger *slog.Logger) (auth.EmailDispatcher, error) {
	switch cfg.Email.Driver {
	case config.EmailSMTP:
		dispatcher, err := mailer.NewSMTPDispatcher(mailer.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			SSL:         cfg.SMTP.SSL,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			SenderEmail: cfg.SMTP.SenderEmail,
			SenderName:  cfg.SMTP.SenderName,
			ResetTTL:    cfg.ResetTokenLifetime(),
		}, logger)
		if err != nil {
			return nil, err
		}
		return dispatcher, nil
	case config.EmailLog:
		logger.Warn("email driver is log, links are written to the console")
		return mailer.NewLogDispatcher(mailOut, cfg.SMTP.SenderName, cfg.ResetTokenLifetime(), logger), nil
	default:
		return nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.Email.Driver).
			Errorf("unknown email driver %q", cfg.Email.Driver)
	}
}
