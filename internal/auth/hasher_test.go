// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubpass/clubpass/internal/auth"
)

func TestPBKDF2Hasher_Hash(t *testing.T) {
	hasher := auth.NewPBKDF2Hasher()

	t.Run("record is salt and key in base64", func(t *testing.T) {
		record, err := hasher.Hash("password123")
		require.NoError(t, err)

		parts := strings.Split(record, ".")
		require.Len(t, parts, 2)

		salt, err := base64.StdEncoding.DecodeString(parts[0])
		require.NoError(t, err)
		assert.Len(t, salt, 16)

		key, err := base64.StdEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		assert.Len(t, key, 64)
	})

	t.Run("same password produces different records", func(t *testing.T) {
		first, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		second, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, auth.ErrEmptyPassword)
	})
}

func TestPBKDF2Hasher_Verify(t *testing.T) {
	hasher := auth.NewPBKDF2Hasher()
	record, err := hasher.Hash("correct horse")
	require.NoError(t, err)

	t.Run("correct password verifies", func(t *testing.T) {
		assert.True(t, hasher.Verify("correct horse", record))
	})

	t.Run("different password fails", func(t *testing.T) {
		assert.False(t, hasher.Verify("correct horse!", record))
		assert.False(t, hasher.Verify("", record))
	})

	t.Run("record of another password fails", func(t *testing.T) {
		other, err := hasher.Hash("battery staple")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("correct horse", other))
	})

	salt, key, _ := strings.Cut(record, ".")
	malformed := []struct {
		name   string
		record string
	}{
		{"empty", ""},
		{"no delimiter", salt + key},
		{"too many delimiters", salt + "." + key + "." + key},
		{"salt not base64", "!!!." + key},
		{"key not base64", salt + ".!!!"},
		{"empty salt", "." + key},
		{"short key", salt + "." + base64.StdEncoding.EncodeToString([]byte("short"))},
		{"argon2 record", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
	}
	for _, tt := range malformed {
		t.Run("malformed record fails: "+tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, hasher.Verify("correct horse", tt.record))
			})
		})
	}
}
