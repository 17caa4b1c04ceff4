// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher derives and verifies salted password hashes.
type PasswordHasher interface {
	// Hash returns a storable record for password.
	Hash(password string) (string, error)
	// Verify reports whether password matches record. Malformed records
	// never match.
	Verify(password, record string) bool
}

// PBKDF2 parameters.
const (
	pbkdf2SaltSize   = 16
	pbkdf2Iterations = 10000
	pbkdf2KeySize    = 64
)

// PBKDF2Hasher implements PasswordHasher with PBKDF2-HMAC-SHA512.
// Records are base64(salt) + "." + base64(key).
type PBKDF2Hasher struct {
	rand io.Reader
}

// NewPBKDF2Hasher creates a PBKDF2Hasher reading salts from crypto/rand.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{rand: rand.Reader}
}

// Hash derives a record from password with a fresh random salt.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, pbkdf2SaltSize)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", oops.Code("PASSWORD_HASH_FAILED").With("operation", "generate salt").Wrap(err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeySize, sha512.New)

	return base64.StdEncoding.EncodeToString(salt) + "." + base64.StdEncoding.EncodeToString(key), nil
}

// Verify re-derives the key with the record's salt and compares in constant time.
func (h *PBKDF2Hasher) Verify(password, record string) bool {
	parts := strings.Split(record, ".")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(salt) == 0 {
		return false
	}
	key, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(key) != pbkdf2KeySize {
		return false
	}

	derived := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeySize, sha512.New)
	return subtle.ConstantTimeCompare(derived, key) == 1
}
