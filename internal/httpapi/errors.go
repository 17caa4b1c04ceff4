// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/observability"
	"github.com/clubpass/clubpass/pkg/errutil"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const internalMessage = "internal server error"

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch auth.Kind(err) {
	case auth.ErrUnauthorized:
		return http.StatusUnauthorized
	case auth.ErrNotFound:
		return http.StatusNotFound
	case auth.ErrConflict:
		return http.StatusConflict
	case auth.ErrBadRequest:
		return http.StatusBadRequest
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// outcomeFor maps an error to its auth metrics outcome label.
func outcomeFor(err error) string {
	if err == nil {
		return observability.OutcomeSuccess
	}
	switch auth.Kind(err) {
	case auth.ErrUnauthorized:
		return observability.OutcomeUnauthorized
	case auth.ErrNotFound:
		return observability.OutcomeNotFound
	case auth.ErrConflict:
		return observability.OutcomeConflict
	case auth.ErrBadRequest:
		return observability.OutcomeBadRequest
	}
	return observability.OutcomeError
}

// errorBody builds the response for a classified failure. The message is
// the oops message without the kind suffix.
func errorBody(err error) ErrorResponse {
	var he *echo.HTTPError
	if errors.As(err, &he) && auth.Kind(err) == nil {
		return ErrorResponse{
			Error:   strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_")),
			Message: strings.ToLower(http.StatusText(he.Code)),
		}
	}

	code := errutil.Code(err)
	if code == "" {
		code = "ERROR"
	}
	msg := err.Error()
	if kind := auth.Kind(err); kind != nil {
		msg = strings.TrimSuffix(msg, ": "+kind.Error())
	}
	return ErrorResponse{Error: code, Message: msg}
}

// errorHandler is the echo HTTPErrorHandler. Unclassified errors are logged
// and answered with a generic 500 body.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := statusFor(err)
		var body ErrorResponse
		if status == http.StatusInternalServerError {
			errutil.LogErrorContext(c.Request().Context(), logger, "request failed", err)
			body = ErrorResponse{Error: "INTERNAL_ERROR", Message: internalMessage}
		} else {
			body = errorBody(err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.WarnContext(c.Request().Context(), "write error response failed", "error", writeErr)
		}
	}
}

func badRequest(code, format string, args ...any) error {
	return oops.Code(code).Wrapf(auth.ErrBadRequest, format, args...)
}
