// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/samber/oops"
)

const opaqueTokenBytes = 32

// TokenGenerator produces random single-use token values.
type TokenGenerator interface {
	NewToken() (string, error)
	// IsWellFormed is a syntactic check only. It says nothing about whether
	// the token exists or is still active.
	IsWellFormed(token string) bool
}

// OpaqueTokenGenerator returns base64-encoded 32-byte random tokens.
type OpaqueTokenGenerator struct {
	rand io.Reader
}

// NewOpaqueTokenGenerator creates a generator reading from crypto/rand.
func NewOpaqueTokenGenerator() *OpaqueTokenGenerator {
	return &OpaqueTokenGenerator{rand: rand.Reader}
}

// NewToken returns a fresh token.
func (g *OpaqueTokenGenerator) NewToken() (string, error) {
	b := make([]byte, opaqueTokenBytes)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").Wrap(err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// IsWellFormed reports whether token is non-empty valid base64.
func (g *OpaqueTokenGenerator) IsWellFormed(token string) bool {
	if token == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(token)
	return err == nil
}
