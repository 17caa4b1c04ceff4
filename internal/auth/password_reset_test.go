// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/pkg/errutil"
)

func TestService_ForgotPassword(t *testing.T) {
	f := newFixture(t)
	registered, _ := f.register(t, "ada@example.com", "secret1")

	link := f.expectResetEmail("ada@example.com")
	require.NoError(t, f.svc.ForgotPassword(t.Context(), " Ada@Example.com"))

	assert.True(t, strings.HasPrefix(link.link, frontendURL+"/reset-password?token="))
	reset, err := f.store.ResetTokens().GetByToken(t.Context(), link.token(t))
	require.NoError(t, err)
	assert.Equal(t, registered.AccountID, reset.AccountID)
	assert.Equal(t, f.clock.Now().Add(auth.DefaultResetTokenLifetime), reset.ExpiresAt)
	assert.False(t, reset.IsUsed)
}

func TestService_ForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ForgotPassword(t.Context(), "nobody@example.com")
	errutil.AssertErrorKind(t, err, "ACCOUNT_NOT_FOUND", auth.ErrNotFound)
}

func TestService_ForgotPassword_EmailFailureDiscardsToken(t *testing.T) {
	f := newFixture(t)
	registered, _ := f.register(t, "ada@example.com", "secret1")

	f.email.On("SendPasswordResetEmail", mock.Anything, "ada@example.com", mock.AnythingOfType("string")).
		Return(errors.New("smtp unavailable")).
		Once()

	err := f.svc.ForgotPassword(t.Context(), "ada@example.com")
	errutil.AssertErrorCode(t, err, "RESET_EMAIL_FAILED")

	_, err = f.store.ResetTokens().GetLatestByAccount(t.Context(), registered.AccountID)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestService_ResetPassword(t *testing.T) {
	f := newFixture(t)
	registered, _ := f.register(t, "ada@example.com", "secret1")

	link := f.expectResetEmail("ada@example.com")
	require.NoError(t, f.svc.ForgotPassword(t.Context(), "ada@example.com"))
	token := link.token(t)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.svc.ResetPassword(t.Context(), token, "newsecret"))

	account := f.account(t, registered.AccountID)
	require.NotNil(t, account.PasswordHash)
	assert.True(t, f.hasher.Verify("newsecret", *account.PasswordHash))
	assert.Equal(t, f.clock.Now(), account.UpdatedAt)

	reset, err := f.store.ResetTokens().GetByToken(t.Context(), token)
	require.NoError(t, err)
	assert.True(t, reset.IsUsed)

	// Sessions issued before the reset are not revoked.
	_, err = f.svc.RefreshToken(t.Context(), registered.RefreshToken)
	assert.NoError(t, err)

	t.Run("token cannot be reused", func(t *testing.T) {
		err := f.svc.ResetPassword(t.Context(), token, "thirdsecret")
		errutil.AssertErrorKind(t, err, "RESET_TOKEN_USED", auth.ErrNotFound)
	})
}

func TestService_ResetPassword_Rejects(t *testing.T) {
	f := newFixture(t)
	registered, _ := f.register(t, "ada@example.com", "secret1")

	link := f.expectResetEmail("ada@example.com")
	require.NoError(t, f.svc.ForgotPassword(t.Context(), "ada@example.com"))
	token := link.token(t)

	t.Run("unknown token", func(t *testing.T) {
		err := f.svc.ResetPassword(t.Context(), "aGVsbG8gd29ybGQ=", "newsecret")
		errutil.AssertErrorKind(t, err, "RESET_TOKEN_NOT_FOUND", auth.ErrNotFound)
	})

	t.Run("short password", func(t *testing.T) {
		err := f.svc.ResetPassword(t.Context(), token, "12345")
		errutil.AssertErrorKind(t, err, "PASSWORD_TOO_SHORT", auth.ErrBadRequest)
	})

	t.Run("expired token", func(t *testing.T) {
		f.clock.Advance(auth.DefaultResetTokenLifetime)
		err := f.svc.ResetPassword(t.Context(), token, "newsecret")
		errutil.AssertErrorKind(t, err, "RESET_TOKEN_EXPIRED", auth.ErrBadRequest)
	})

	account := f.account(t, registered.AccountID)
	assert.True(t, f.hasher.Verify("secret1", *account.PasswordHash))
}
