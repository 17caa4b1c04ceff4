// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

// Package auth provides credential and token lifecycle management for
// ClubPass accounts.
//
// # Primitives
//
//   - PBKDF2Hasher - salted PBKDF2-HMAC-SHA512 password records
//   - OpaqueTokenGenerator - random refresh, verification and reset tokens
//   - TokenIssuer - HS256 access tokens with identity claims
//
// # Service
//
// Service ties the primitives to a Store, an EmailDispatcher and an
// optional IdentityVerifier. Every operation runs in one store transaction
// and fails with an error wrapping one of ErrUnauthorized, ErrNotFound,
// ErrConflict or ErrBadRequest, or with an unclassified error for
// unexpected store and email faults.
//
// Persisted tokens move from Active to one of the terminal states Consumed,
// Revoked or Expired. Consumption is a conditional write in the store, so a
// token is exchanged at most once even under concurrent use.
package auth
