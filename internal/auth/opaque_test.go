// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubpass/clubpass/internal/auth"
)

func TestOpaqueTokenGenerator_NewToken(t *testing.T) {
	gen := auth.NewOpaqueTokenGenerator()

	token, err := gen.NewToken()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.True(t, gen.IsWellFormed(token))

	seen := map[string]bool{token: true}
	for range 100 {
		next, err := gen.NewToken()
		require.NoError(t, err)
		require.False(t, seen[next], "token repeated")
		seen[next] = true
	}
}

func TestOpaqueTokenGenerator_IsWellFormed(t *testing.T) {
	gen := auth.NewOpaqueTokenGenerator()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"standard base64", "aGVsbG8gd29ybGQ=", true},
		{"empty", "", false},
		{"bad padding", "aGVsbG8gd29ybGQ", false},
		{"url alphabet", "a-b_", false},
		{"whitespace", "aGVs bG8=", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gen.IsWellFormed(tt.token))
		})
	}
}
