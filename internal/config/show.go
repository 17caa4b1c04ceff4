// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package config

import (
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const redacted = "[redacted]"

var secretKeys = []string{"jwt.secret", "database.url", "smtp.password"}

// Redacted renders the effective configuration as YAML with secrets masked.
func (c *Config) Redacted() ([]byte, error) {
	if c.k == nil {
		return nil, oops.Code("CONFIG_NOT_LOADED").Errorf("configuration was not produced by Load")
	}
	k := c.k.Copy()
	for _, key := range secretKeys {
		if k.String(key) == "" {
			continue
		}
		if err := k.Set(key, redacted); err != nil {
			return nil, oops.Code("CONFIG_RENDER_FAILED").With("key", key).Wrap(err)
		}
	}
	out, err := yaml.Marshal(k.Raw())
	if err != nil {
		return nil, oops.Code("CONFIG_RENDER_FAILED").Wrap(err)
	}
	return out, nil
}
