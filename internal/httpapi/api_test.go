// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package httpapi_test

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/httpapi"
	"github.com/clubpass/clubpass/internal/observability"
)

func TestAPI_Register(t *testing.T) {
	f := newAPI(t)

	result, _ := f.register(t, "A@X.com", "Secret123")

	assert.Equal(t, "a@x.com", result.Email)
	assert.Equal(t, "Member", result.AccountType)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.True(t, result.AccessTokenExpiresAt.After(time.Now()))
	_, err := ulid.Parse(result.AccountID)
	assert.NoError(t, err)
	assert.True(t, f.issuer.Validate(result.AccessToken))
}

func TestAPI_RegisterRejects(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(map[string]string)
		wantCode string
	}{
		{"confirmation mismatch", func(b map[string]string) { b["confirmPassword"] = "Secret124" }, "PASSWORD_MISMATCH"},
		{"short password", func(b map[string]string) { b["password"], b["confirmPassword"] = "abc", "abc" }, "PASSWORD_TOO_SHORT"},
		{"bad email", func(b map[string]string) { b["email"] = "not-an-email" }, "EMAIL_INVALID"},
		{"unknown account type", func(b map[string]string) { b["accountType"] = "Admin" }, "ACCOUNT_TYPE_INVALID"},
		{"unknown gender", func(b map[string]string) { b["gender"] = "robot" }, "GENDER_INVALID"},
		{"bad birth date", func(b map[string]string) { b["birthDate"] = "01/02/1990" }, "BIRTH_DATE_INVALID"},
		{"missing name", func(b map[string]string) { b["name"] = "" }, "PROFILE_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPI(t)
			body := registerBody("a@x.com", "Secret123")
			tt.mutate(body)

			resp := f.post(t, "/register", body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, tt.wantCode, resp.errorBody(t).Error)
		})
	}
}

func TestAPI_RegisterOwnerWithProfile(t *testing.T) {
	f := newAPI(t)
	f.expectEmail("SendVerificationEmail", "owner@x.com")

	body := registerBody("owner@x.com", "Secret123")
	body["accountType"] = "owner"
	body["gender"] = "female"
	body["birthDate"] = "1990-05-17"
	body["timezone"] = "Europe/Istanbul"

	resp := f.post(t, "/register", body)
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body)
	var result httpapi.AuthResponse
	resp.decode(t, &result)
	assert.Equal(t, "Owner", result.AccountType)
}

func TestAPI_RegisterDuplicateIsConflict(t *testing.T) {
	f := newAPI(t)
	f.register(t, "a@x.com", "Secret123")

	resp := f.post(t, "/register", registerBody("a@x.com", "Secret123"))
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "EMAIL_ALREADY_REGISTERED", resp.errorBody(t).Error)
}

func TestAPI_MalformedJSON(t *testing.T) {
	f := newAPI(t)

	resp := f.post(t, "/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "REQUEST_INVALID", resp.errorBody(t).Error)
}

func TestAPI_Login(t *testing.T) {
	f := newAPI(t)
	f.register(t, "a@x.com", "Secret123")

	resp := f.post(t, "/login", map[string]string{"email": "a@x.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, resp.Code)
	var result httpapi.AuthResponse
	resp.decode(t, &result)
	assert.Equal(t, "a@x.com", result.Email)

	wrong := f.post(t, "/login", map[string]string{"email": "a@x.com", "password": "Secret124"})
	unknown := f.post(t, "/login", map[string]string{"email": "b@x.com", "password": "Secret123"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body, unknown.Body, "login failures must be indistinguishable")
	assert.Equal(t, "AUTH_INVALID_CREDENTIALS", wrong.errorBody(t).Error)
	assert.Contains(t, wrong.errorBody(t).Message, "invalid email or password")
}

func TestAPI_RefreshAndRevoke(t *testing.T) {
	f := newAPI(t)
	registered, _ := f.register(t, "a@x.com", "Secret123")

	resp := f.post(t, "/refresh-token", map[string]string{"refreshToken": registered.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code)
	var rotated httpapi.AuthResponse
	resp.decode(t, &rotated)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	replay := f.post(t, "/refresh-token", map[string]string{"refreshToken": registered.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
	assert.Equal(t, "REFRESH_TOKEN_INVALID", replay.errorBody(t).Error)

	revoke := f.post(t, "/revoke-token", map[string]string{"refreshToken": rotated.RefreshToken})
	assert.Equal(t, http.StatusNoContent, revoke.Code)
	assert.Empty(t, revoke.Body)

	afterRevoke := f.post(t, "/refresh-token", map[string]string{"refreshToken": rotated.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, afterRevoke.Code)

	missing := f.post(t, "/revoke-token", map[string]string{"refreshToken": "does-not-exist"})
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "REFRESH_TOKEN_NOT_FOUND", missing.errorBody(t).Error)
}

func TestAPI_PasswordReset(t *testing.T) {
	f := newAPI(t)
	f.register(t, "a@x.com", "Secret123")

	l := f.expectEmail("SendPasswordResetEmail", "a@x.com")
	resp := f.post(t, "/forgot-password", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusNoContent, resp.Code)
	token := l.query(t, "token")

	mismatch := f.post(t, "/reset-password", map[string]string{"token": token, "newPassword": "NewSecret1", "confirmPassword": "NewSecret2"})
	assert.Equal(t, http.StatusBadRequest, mismatch.Code)
	assert.Equal(t, "PASSWORD_MISMATCH", mismatch.errorBody(t).Error)

	reset := f.post(t, "/reset-password", map[string]string{"token": token, "newPassword": "NewSecret1", "confirmPassword": "NewSecret1"})
	assert.Equal(t, http.StatusNoContent, reset.Code)

	reused := f.post(t, "/reset-password", map[string]string{"token": token, "newPassword": "NewSecret2", "confirmPassword": "NewSecret2"})
	assert.Equal(t, http.StatusNotFound, reused.Code)
	assert.Equal(t, "RESET_TOKEN_USED", reused.errorBody(t).Error)

	login := f.post(t, "/login", map[string]string{"email": "a@x.com", "password": "NewSecret1"})
	assert.Equal(t, http.StatusOK, login.Code)

	unknown := f.post(t, "/forgot-password", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestAPI_VerifyEmail(t *testing.T) {
	f := newAPI(t)
	registered, l := f.register(t, "a@x.com", "Secret123")
	token := l.query(t, "token")

	q := url.Values{"accountId": {registered.AccountID}, "token": {token}}
	resp := f.do(t, http.MethodGet, "/api/auth/verify-email?"+q.Encode(), nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	again := f.do(t, http.MethodGet, "/api/auth/verify-email?"+q.Encode(), nil, nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, "VERIFICATION_TOKEN_USED", again.errorBody(t).Error)

	badID := f.do(t, http.MethodGet, "/api/auth/verify-email?accountId=nope&token=x", nil, nil)
	assert.Equal(t, http.StatusBadRequest, badID.Code)
	assert.Equal(t, "ACCOUNT_ID_INVALID", badID.errorBody(t).Error)

	verified := f.post(t, "/send-verification-email", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, verified.Code)
	assert.Equal(t, "EMAIL_ALREADY_VERIFIED", verified.errorBody(t).Error)
}

func TestAPI_SendVerificationEmail(t *testing.T) {
	f := newAPI(t)
	f.register(t, "a@x.com", "Secret123")
	f.expectEmail("SendVerificationEmail", "a@x.com")

	resp := f.post(t, "/send-verification-email", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestAPI_EmailFailureIsInternalError(t *testing.T) {
	f := newAPI(t)
	f.email.On("SendVerificationEmail", mock.Anything, "a@x.com", mock.Anything).
		Return(errors.New("smtp: connection refused")).
		Once()

	resp := f.post(t, "/register", registerBody("a@x.com", "Secret123"))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	body := resp.errorBody(t)
	assert.Equal(t, "INTERNAL_ERROR", body.Error)
	assert.NotContains(t, body.Message, "smtp")
	assert.Contains(t, f.logs.String(), "VERIFICATION_EMAIL_FAILED")
}

func TestAPI_GoogleLogin(t *testing.T) {
	f := newAPI(t)
	f.identities.On("Verify", mock.Anything, "good-token").
		Return(&auth.FederatedIdentity{Provider: auth.ProviderGoogle, Subject: "1", Email: "g@x.com", EmailVerified: true}, nil)
	f.identities.On("Verify", mock.Anything, "bad-token").
		Return(nil, oops.Code("GOOGLE_TOKEN_INVALID").Wrapf(auth.ErrUnauthorized, "rejected"))

	resp := f.post(t, "/google-login", map[string]string{"idToken": "good-token"})
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body)
	var result httpapi.AuthResponse
	resp.decode(t, &result)
	assert.Equal(t, "g@x.com", result.Email)
	assert.Equal(t, "Unknown", result.AccountType)

	bad := f.post(t, "/google-login", map[string]string{"idToken": "bad-token"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, "FEDERATED_TOKEN_INVALID", bad.errorBody(t).Error)
}

func TestAPI_Me(t *testing.T) {
	f := newAPI(t)
	registered, _ := f.register(t, "a@x.com", "Secret123")

	resp := f.do(t, http.MethodGet, "/api/auth/me", nil, http.Header{"Authorization": {"Bearer " + registered.AccessToken}})
	require.Equal(t, http.StatusOK, resp.Code)
	var account httpapi.AccountResponse
	resp.decode(t, &account)
	assert.Equal(t, registered.AccountID, account.AccountID)
	assert.Equal(t, "Member", account.Role)
	assert.Equal(t, "Email", account.Provider)
	assert.Equal(t, "Pending", account.EmailVerification)
}

func TestAPI_MeRequiresBearer(t *testing.T) {
	f := newAPI(t)
	registered, _ := f.register(t, "a@x.com", "Secret123")

	headers := map[string]http.Header{
		"missing":      nil,
		"wrong scheme": {"Authorization": {"Basic " + registered.AccessToken}},
		"empty token":  {"Authorization": {"Bearer "}},
		"garbage":      {"Authorization": {"Bearer not.a.jwt"}},
		"refresh":      {"Authorization": {"Bearer " + registered.RefreshToken}},
	}
	var bodies [][]byte
	for name, h := range headers {
		t.Run(name, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, "/api/auth/me", nil, h)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			bodies = append(bodies, resp.Body)
		})
	}
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}

func TestAPI_Metrics(t *testing.T) {
	f := newAPI(t)
	f.register(t, "a@x.com", "Secret123")
	f.post(t, "/login", map[string]string{"email": "a@x.com", "password": "wrong-password"})

	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.AuthOperationsTotal.WithLabelValues("register", observability.OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.AuthOperationsTotal.WithLabelValues("login", observability.OutcomeUnauthorized)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.HTTPRequestsTotal.WithLabelValues("/api/auth/register", "POST", "201")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.HTTPRequestsTotal.WithLabelValues("/api/auth/login", "POST", "401")), 0)
}

func TestAPI_UnknownRoute(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodGet, "/api/auth/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", resp.errorBody(t).Error)
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := httpapi.NewServer(":0", httpapi.Deps{})
	require.Error(t, err)
}
