// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/auth/memory"
	"github.com/clubpass/clubpass/internal/auth/mocks"
	"github.com/clubpass/clubpass/internal/httpapi"
	"github.com/clubpass/clubpass/internal/observability"
)

type apiFixture struct {
	handler    http.Handler
	email      *mocks.MockEmailDispatcher
	identities *mocks.MockIdentityVerifier
	issuer     *auth.TokenIssuer
	metrics    *observability.Metrics
	logs       *bytes.Buffer
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()

	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		Secret:              []byte("0123456789abcdef0123456789abcdef"),
		Issuer:              "https://auth.clubpass.test",
		Audience:            "clubpass-app",
		AccessTokenLifetime: 15 * time.Minute,
	}, auth.SystemClock{})
	require.NoError(t, err)

	f := &apiFixture{
		email:      mocks.NewMockEmailDispatcher(t),
		identities: mocks.NewMockIdentityVerifier(t),
		issuer:     issuer,
		metrics:    observability.NewMetrics(prometheus.NewRegistry()),
		logs:       &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(f.logs, nil))

	svc, err := auth.NewService(auth.ServiceDeps{
		Store:      memory.NewStore(),
		Hasher:     auth.NewPBKDF2Hasher(),
		Tokens:     auth.NewOpaqueTokenGenerator(),
		Issuer:     issuer,
		Email:      f.email,
		Identities: f.identities,
		Clock:      auth.SystemClock{},
		Logger:     logger,
	}, auth.ServiceConfig{FrontendURL: "https://app.clubpass.test"})
	require.NoError(t, err)

	srv, err := httpapi.NewServer("127.0.0.1:0", httpapi.Deps{
		Service: svc,
		Issuer:  issuer,
		Metrics: f.metrics,
		Logger:  logger,
	})
	require.NoError(t, err)
	f.handler = srv.Handler()
	return f
}

type response struct {
	Code int
	Body []byte
}

func (r response) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dst), "body: %s", r.Body)
}

func (r response) errorBody(t *testing.T) httpapi.ErrorResponse {
	t.Helper()
	var body httpapi.ErrorResponse
	r.decode(t, &body)
	return body
}

func (f *apiFixture) do(t *testing.T, method, target string, body any, header http.Header) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return response{Code: rec.Code, Body: rec.Body.Bytes()}
}

func (f *apiFixture) post(t *testing.T, path string, body any) response {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/auth"+path, body, nil)
}

type link struct {
	mu  sync.Mutex
	raw string
}

func (l *link) query(t *testing.T, key string) string {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotEmpty(t, l.raw, "no email captured")
	u, err := url.Parse(l.raw)
	require.NoError(t, err)
	return u.Query().Get(key)
}

func (f *apiFixture) expectEmail(method, to string) *link {
	l := &link{}
	f.email.On(method, mock.Anything, to, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.raw = args.String(2)
		}).
		Return(nil).
		Once()
	return l
}

func registerBody(email, password string) map[string]string {
	return map[string]string{
		"email":           email,
		"password":        password,
		"confirmPassword": password,
		"accountType":     "Member",
		"name":            "Ada",
		"surname":         "Lovelace",
		"gsm":             "+44 20 7946 0000",
	}
}

func (f *apiFixture) register(t *testing.T, email, password string) (httpapi.AuthResponse, *link) {
	t.Helper()
	l := f.expectEmail("SendVerificationEmail", auth.NormalizeEmail(email))
	resp := f.post(t, "/register", registerBody(email, password))
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body)
	var result httpapi.AuthResponse
	resp.decode(t, &result)
	return result, l
}
