// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/auth/memory"
	"github.com/clubpass/clubpass/internal/auth/mocks"
	"github.com/clubpass/clubpass/pkg/errutil"
)

func TestNewService_RequiresCollaborators(t *testing.T) {
	issuer, err := auth.NewTokenIssuer(validIssuerConfig(), newFakeClock())
	require.NoError(t, err)

	complete := func() auth.ServiceDeps {
		return auth.ServiceDeps{
			Store:  memory.NewStore(),
			Hasher: auth.NewPBKDF2Hasher(),
			Tokens: auth.NewOpaqueTokenGenerator(),
			Issuer: issuer,
			Email:  mocks.NewMockEmailDispatcher(t),
		}
	}

	tests := []struct {
		name    string
		mutate  func(d *auth.ServiceDeps)
		message string
	}{
		{"store", func(d *auth.ServiceDeps) { d.Store = nil }, "store is required"},
		{"hasher", func(d *auth.ServiceDeps) { d.Hasher = nil }, "password hasher is required"},
		{"tokens", func(d *auth.ServiceDeps) { d.Tokens = nil }, "token generator is required"},
		{"issuer", func(d *auth.ServiceDeps) { d.Issuer = nil }, "access token issuer is required"},
		{"email", func(d *auth.ServiceDeps) { d.Email = nil }, "email dispatcher is required"},
	}
	for _, tt := range tests {
		t.Run("missing "+tt.name, func(t *testing.T) {
			deps := complete()
			tt.mutate(&deps)

			svc, err := auth.NewService(deps, auth.ServiceConfig{})
			assert.Nil(t, svc)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "SERVICE_INVALID")
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	t.Run("optional collaborators may be omitted", func(t *testing.T) {
		svc, err := auth.NewService(complete(), auth.ServiceConfig{})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestService_CurrentAccount(t *testing.T) {
	f := newFixture(t)
	registered, _ := f.register(t, "ada@example.com", "secret1")

	account, err := f.svc.CurrentAccount(t.Context(), registered.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", account.Email)
	assert.Equal(t, auth.AccountTypeMember, account.Type)

	_, err = f.svc.CurrentAccount(t.Context(), testAccount(auth.AccountTypeMember).ID)
	errutil.AssertErrorKind(t, err, "ACCOUNT_NOT_FOUND", auth.ErrNotFound)
}

func TestLinks(t *testing.T) {
	links := auth.Links{FrontendURL: "https://app.clubpass.test/"}
	id := testAccount(auth.AccountTypeMember).ID

	assert.Equal(t,
		"https://app.clubpass.test/reset-password?token=a%2Bb%2Fc%3D",
		links.ResetPassword("a+b/c="))
	assert.Equal(t,
		"https://app.clubpass.test/verify-email?accountId="+id.String()+"&token=a%2Bb%2Fc%3D",
		links.VerifyEmail(id, "a+b/c="))
}

func TestKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(t.Context(), "nobody@example.com", "whatever")
	assert.Equal(t, auth.ErrUnauthorized, auth.Kind(err))

	err = f.svc.ForgotPassword(t.Context(), "nobody@example.com")
	assert.Equal(t, auth.ErrNotFound, auth.Kind(err))

	assert.Nil(t, auth.Kind(assert.AnError))
	assert.Nil(t, auth.Kind(nil))
}
