// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

// Package config loads ClubPass configuration with koanf: built-in
// defaults, then an optional YAML file, then secrets from the environment,
// then command-line flags.
package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Email drivers.
const (
	EmailSMTP = "smtp"
	EmailLog  = "log"
)

// Config is the effective ClubPass configuration.
type Config struct {
	JWT      JWTConfig      `koanf:"jwt"`
	Tokens   TokensConfig   `koanf:"tokens"`
	App      AppConfig      `koanf:"app"`
	HTTP     ListenConfig   `koanf:"http"`
	Metrics  ListenConfig   `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
	Store    StoreConfig    `koanf:"store"`
	Database DatabaseConfig `koanf:"database"`
	Email    EmailConfig    `koanf:"email"`
	SMTP     SMTPConfig     `koanf:"smtp"`
	Google   GoogleConfig   `koanf:"google"`

	k *koanf.Koanf
}

// JWTConfig configures access and refresh token issuance.
type JWTConfig struct {
	Secret             string `koanf:"secret" jsonschema:"description=HMAC key for access tokens; at least 32 bytes. Falls back to CLUBPASS_JWT_SECRET."`
	Issuer             string `koanf:"issuer" jsonschema:"description=iss claim of issued tokens"`
	Audience           string `koanf:"audience" jsonschema:"description=aud claim of issued tokens"`
	AccessTokenMinutes int    `koanf:"access_token_minutes" jsonschema:"minimum=1"`
	RefreshTokenDays   int    `koanf:"refresh_token_days" jsonschema:"minimum=1"`
}

// TokensConfig configures one-time token lifetimes.
type TokensConfig struct {
	VerificationHours int `koanf:"verification_hours" jsonschema:"minimum=1"`
	ResetHours        int `koanf:"reset_hours" jsonschema:"minimum=1"`
}

// AppConfig describes the frontend that emailed links point to.
type AppConfig struct {
	FrontendURL string `koanf:"frontend_url" jsonschema:"format=uri"`
}

// ListenConfig is a listen address.
type ListenConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures slog.
type LogConfig struct {
	Format string `koanf:"format" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// StoreConfig selects the credential store.
type StoreConfig struct {
	Driver string `koanf:"driver" jsonschema:"enum=postgres,enum=memory"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	URL      string `koanf:"url" jsonschema:"description=PostgreSQL URL. Falls back to DATABASE_URL."`
	MaxConns int32  `koanf:"max_conns" jsonschema:"minimum=0"`
	// AutoMigrate applies pending migrations when serve starts.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// EmailConfig selects the email transport.
type EmailConfig struct {
	Driver string `koanf:"driver" jsonschema:"enum=smtp,enum=log"`
}

// SMTPConfig configures the SMTP relay.
type SMTPConfig struct {
	Host        string `koanf:"host"`
	Port        int    `koanf:"port" jsonschema:"minimum=1,maximum=65535"`
	SSL         bool   `koanf:"ssl"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password" jsonschema:"description=Falls back to CLUBPASS_SMTP_PASSWORD."`
	SenderEmail string `koanf:"sender_email"`
	SenderName  string `koanf:"sender_name"`
}

// GoogleConfig enables Google sign-in when ClientID is set.
type GoogleConfig struct {
	ClientID string `koanf:"client_id"`
}

// AccessTokenLifetime returns jwt.access_token_minutes as a duration.
func (c *Config) AccessTokenLifetime() time.Duration {
	return time.Duration(c.JWT.AccessTokenMinutes) * time.Minute
}

// RefreshTokenLifetime returns jwt.refresh_token_days as a duration.
func (c *Config) RefreshTokenLifetime() time.Duration {
	return time.Duration(c.JWT.RefreshTokenDays) * 24 * time.Hour
}

// VerificationTokenLifetime returns tokens.verification_hours as a duration.
func (c *Config) VerificationTokenLifetime() time.Duration {
	return time.Duration(c.Tokens.VerificationHours) * time.Hour
}

// ResetTokenLifetime returns tokens.reset_hours as a duration.
func (c *Config) ResetTokenLifetime() time.Duration {
	return time.Duration(c.Tokens.ResetHours) * time.Hour
}
