// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/observability"
)

// AuthService is the part of auth.Service exposed over HTTP.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResult, error)
	Login(ctx context.Context, email, password string) (*auth.AuthResult, error)
	GoogleLogin(ctx context.Context, idToken string) (*auth.AuthResult, error)
	RefreshToken(ctx context.Context, rawToken string) (*auth.AuthResult, error)
	RevokeRefreshToken(ctx context.Context, rawToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	SendVerificationEmail(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, accountID ulid.ULID, token string) error
	CurrentAccount(ctx context.Context, accountID ulid.ULID) (*auth.Account, error)
}

var _ AuthService = (*auth.Service)(nil)

type handlers struct {
	svc     AuthService
	metrics *observability.Metrics
	logger  *slog.Logger
}

// record counts the operation outcome and passes err through.
func (h *handlers) record(operation string, err error) error {
	if h.metrics != nil {
		h.metrics.RecordAuthOperation(operation, outcomeFor(err))
	}
	return err
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return badRequest("REQUEST_INVALID", "request body is not valid JSON")
	}
	return nil
}

func (h *handlers) register(c echo.Context) error {
	var body registerRequest
	if err := bind(c, &body); err != nil {
		return err
	}
	req, err := body.toDomain()
	if err != nil {
		return h.record("register", err)
	}

	result, err := h.svc.Register(c.Request().Context(), req)
	if err := h.record("register", err); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newAuthResponse(result))
}

func (h *handlers) login(c echo.Context) error {
	var body loginRequest
	if err := bind(c, &body); err != nil {
		return err
	}

	result, err := h.svc.Login(c.Request().Context(), body.Email, body.Password)
	if err := h.record("login", err); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAuthResponse(result))
}

func (h *handlers) googleLogin(c echo.Context) error {
	var body googleLoginRequest
	if err := bind(c, &body); err != nil {
		return err
	}

	result, err := h.svc.GoogleLogin(c.Request().Context(), body.IDToken)
	if err := h.record("google_login", err); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAuthResponse(result))
}

func (h *handlers) refreshToken(c echo.Context) error {
	var body refreshTokenRequest
	if err := bind(c, &body); err != nil {
		return err
	}

	result, err := h.svc.RefreshToken(c.Request().Context(), body.RefreshToken)
	if err := h.record("refresh_token", err); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAuthResponse(result))
}

func (h *handlers) revokeToken(c echo.Context) error {
	var body refreshTokenRequest
	if err := bind(c, &body); err != nil {
		return err
	}

	if err := h.record("revoke_token", h.svc.RevokeRefreshToken(c.Request().Context(), body.RefreshToken)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) forgotPassword(c echo.Context) error {
	var body emailRequest
	if err := bind(c, &body); err != nil {
		return err
	}

	if err := h.record("forgot_password", h.svc.ForgotPassword(c.Request().Context(), body.Email)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) resetPassword(c echo.Context) error {
	var body resetPasswordRequest
	if err := bind(c, &body); err != nil {
		return err
	}
	if body.NewPassword != body.ConfirmPassword {
		return h.record("reset_password", badRequest("PASSWORD_MISMATCH", "password and confirmation do not match"))
	}

	if err := h.record("reset_password", h.svc.ResetPassword(c.Request().Context(), body.Token, body.NewPassword)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) sendVerificationEmail(c echo.Context) error {
	var body emailRequest
	if err := bind(c, &body); err != nil {
		return err
	}

	if err := h.record("send_verification_email", h.svc.SendVerificationEmail(c.Request().Context(), body.Email)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) verifyEmail(c echo.Context) error {
	accountID, err := ulid.Parse(c.QueryParam("accountId"))
	if err != nil {
		return h.record("verify_email", badRequest("ACCOUNT_ID_INVALID", "accountId is not a valid id"))
	}

	if err := h.record("verify_email", h.svc.VerifyEmail(c.Request().Context(), accountID, c.QueryParam("token"))); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) me(c echo.Context) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "UNAUTHORIZED", Message: "authentication required"})
	}

	account, err := h.svc.CurrentAccount(c.Request().Context(), claims.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAccountResponse(account))
}
