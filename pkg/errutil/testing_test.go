// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"

	"github.com/clubpass/clubpass/pkg/errutil"
)

var errKind = errors.New("kind")

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("TOKEN_EXPIRED").Errorf("test error")
	errutil.AssertErrorCode(t, err, "TOKEN_EXPIRED")
}

func TestAssertErrorKind(t *testing.T) {
	err := oops.Code("TOKEN_EXPIRED").Wrapf(errKind, "reset token expired")
	errutil.AssertErrorKind(t, err, "TOKEN_EXPIRED", errKind)
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.With("account_id", "acc-1").Errorf("test error")
	errutil.AssertErrorContext(t, err, "account_id", "acc-1")
}
