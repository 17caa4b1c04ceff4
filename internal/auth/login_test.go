// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/pkg/errutil"
)

func TestService_Login(t *testing.T) {
	f := newFixture(t)
	registered, _ := f.register(t, "ada@example.com", "secret1")

	result, err := f.svc.Login(t.Context(), "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.AccountID, result.AccountID)
	assert.NotEqual(t, registered.RefreshToken, result.RefreshToken)
	assert.True(t, f.issuer.Validate(result.AccessToken))

	// Earlier sessions stay usable.
	earlier, err := f.store.RefreshTokens().GetByToken(t.Context(), registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, auth.TokenActive, earlier.State(f.clock.Now()))
}

func TestService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com", "secret1")

	googleID := "google-subject"
	f.identities.On("Verify", mock.Anything, googleID).
		Return(&auth.FederatedIdentity{
			Provider:      auth.ProviderGoogle,
			Subject:       googleID,
			Email:         "grace@example.com",
			EmailVerified: true,
		}, nil).
		Once()
	_, err := f.svc.GoogleLogin(t.Context(), googleID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ada@example.com", "secret2"},
		{"empty password", "ada@example.com", ""},
		{"unknown email", "nobody@example.com", "secret1"},
		{"account without password", "grace@example.com", "anything"},
	}
	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.svc.Login(t.Context(), tt.email, tt.password)
			assert.Nil(t, result)
			require.Error(t, err)
			errutil.AssertErrorKind(t, err, "AUTH_INVALID_CREDENTIALS", auth.ErrUnauthorized)
			messages = append(messages, err.Error())
		})
	}

	require.Len(t, messages, len(tests))
	for _, msg := range messages {
		assert.Equal(t, messages[0], msg)
	}
}

func TestService_Login_RejectsPasswordAfterReset(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com", "secret1")

	link := f.expectResetEmail("ada@example.com")
	require.NoError(t, f.svc.ForgotPassword(t.Context(), "ada@example.com"))
	require.NoError(t, f.svc.ResetPassword(t.Context(), link.token(t), "newsecret"))

	_, err := f.svc.Login(t.Context(), "ada@example.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	_, err = f.svc.Login(t.Context(), "ada@example.com", "newsecret")
	assert.NoError(t, err)
}
