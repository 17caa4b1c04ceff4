// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth_test

import (
	"bytes"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/auth/memory"
	"github.com/clubpass/clubpass/internal/auth/mocks"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testIssuer   = "https://auth.clubpass.test"
	testAudience = "clubpass-app"
	frontendURL  = "https://app.clubpass.test"
)

// fakeClock is a settable auth.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc        *auth.Service
	store      *memory.Store
	email      *mocks.MockEmailDispatcher
	identities *mocks.MockIdentityVerifier
	issuer     *auth.TokenIssuer
	hasher     *auth.PBKDF2Hasher
	clock      *fakeClock
	logs       *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := newFakeClock()
	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		Secret:              []byte(testSecret),
		Issuer:              testIssuer,
		Audience:            testAudience,
		AccessTokenLifetime: 15 * time.Minute,
	}, clock)
	require.NoError(t, err)

	f := &fixture{
		store:      memory.NewStore(),
		email:      mocks.NewMockEmailDispatcher(t),
		identities: mocks.NewMockIdentityVerifier(t),
		issuer:     issuer,
		hasher:     auth.NewPBKDF2Hasher(),
		clock:      clock,
		logs:       &bytes.Buffer{},
	}

	f.svc, err = auth.NewService(auth.ServiceDeps{
		Store:      f.store,
		Hasher:     f.hasher,
		Tokens:     auth.NewOpaqueTokenGenerator(),
		Issuer:     issuer,
		Email:      f.email,
		Identities: f.identities,
		Clock:      clock,
		Logger:     slog.New(slog.NewJSONHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}, auth.ServiceConfig{
		RefreshTokenLifetime: 7 * 24 * time.Hour,
		FrontendURL:          frontendURL,
	})
	require.NoError(t, err)

	return f
}

// capturedLink records the link passed to the email dispatcher.
type capturedLink struct {
	mu   sync.Mutex
	link string
}

func (c *capturedLink) set(link string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.link = link
}

func (c *capturedLink) query(t *testing.T, key string) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.link, "no email link captured")
	u, err := url.Parse(c.link)
	require.NoError(t, err)
	return u.Query().Get(key)
}

func (c *capturedLink) token(t *testing.T) string {
	t.Helper()
	return c.query(t, "token")
}

func (f *fixture) expectVerificationEmail(to string) *capturedLink {
	c := &capturedLink{}
	f.email.On("SendVerificationEmail", mock.Anything, to, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { c.set(args.String(2)) }).
		Return(nil).
		Once()
	return c
}

func (f *fixture) expectResetEmail(to string) *capturedLink {
	c := &capturedLink{}
	f.email.On("SendPasswordResetEmail", mock.Anything, to, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { c.set(args.String(2)) }).
		Return(nil).
		Once()
	return c
}

func memberRequest(email, password string) auth.RegisterRequest {
	return auth.RegisterRequest{
		Email:       email,
		Password:    password,
		AccountType: auth.AccountTypeMember,
		Profile: auth.ProfileDetails{
			Name:    "Ada",
			Surname: "Lovelace",
			Gsm:     "+44 20 7946 0000",
		},
	}
}

// register creates a member account and returns the result and the emailed
// verification token.
func (f *fixture) register(t *testing.T, email, password string) (*auth.AuthResult, string) {
	t.Helper()
	link := f.expectVerificationEmail(auth.NormalizeEmail(email))
	result, err := f.svc.Register(t.Context(), memberRequest(email, password))
	require.NoError(t, err)
	return result, link.token(t)
}

func (f *fixture) account(t *testing.T, id ulid.ULID) *auth.Account {
	t.Helper()
	account, err := f.store.Accounts().GetByID(t.Context(), id)
	require.NoError(t, err)
	return account
}
