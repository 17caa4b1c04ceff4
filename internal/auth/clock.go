// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import "time"

// Clock is the source of the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
