// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const (
	appName  = "clubpass"
	fileName = "clubpass.yaml"
)

// Dir returns the XDG config directory for clubpass. XDG_CONFIG_HOME wins
// over ~/.config.
func Dir(getenv func(string) string) string {
	base := getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath(getenv func(string) string) string {
	return filepath.Join(Dir(getenv), fileName)
}

// Discover returns explicit when set, otherwise DefaultPath if that file
// exists, otherwise "".
func Discover(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path := DefaultPath(getenv)
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}
}
