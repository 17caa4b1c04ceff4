// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/oklog/ulid/v2"
)

// EmailDispatcher delivers account emails.
type EmailDispatcher interface {
	SendVerificationEmail(ctx context.Context, to, verifyLink string) error
	SendPasswordResetEmail(ctx context.Context, to, resetLink string) error
}

// Links builds frontend links embedded in emails.
type Links struct {
	FrontendURL string
}

// ResetPassword returns the password reset link for token.
func (l Links) ResetPassword(token string) string {
	return l.base() + "/reset-password?token=" + url.QueryEscape(token)
}

// VerifyEmail returns the email verification link for an account and token.
func (l Links) VerifyEmail(accountID ulid.ULID, token string) string {
	q := url.Values{}
	q.Set("accountId", accountID.String())
	q.Set("token", token)
	return l.base() + "/verify-email?" + q.Encode()
}

func (l Links) base() string {
	return strings.TrimRight(l.FrontendURL, "/")
}
