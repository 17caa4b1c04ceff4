// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package config

import (
	_ "embed"
	"errors"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// envFallbacks maps keys to environment variables read when the key is
// still empty after the file is loaded.
var envFallbacks = map[string]string{
	"jwt.secret":    "CLUBPASS_JWT_SECRET",
	"database.url":  "DATABASE_URL",
	"smtp.password": "CLUBPASS_SMTP_PASSWORD",
}

// FlagKeys maps command-line flag names to configuration keys. Flags not
// listed here are not configuration.
var FlagKeys = map[string]string{
	"http-addr":    "http.addr",
	"metrics-addr": "metrics.addr",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"store":        "store.driver",
	"database-url": "database.url",
	"email":        "email.driver",
	"auto-migrate": "database.auto_migrate",
}

// bytesProvider is a koanf.Provider over an in-memory document.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errors.New("bytesProvider does not support Read")
}

// Options controls Load.
type Options struct {
	// Path of a YAML file. Empty means defaults only.
	Path string
	// Flags are applied last. Only changed flags override.
	Flags *pflag.FlagSet
	// Getenv reads environment fallbacks. Nil disables them.
	Getenv func(string) string
}

// Load builds the effective configuration. A config file is checked against
// the schema; cross-field rules are left to Validate.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")
	parser := yaml.Parser()

	if err := k.Load(bytesProvider(defaultsYAML), parser); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_INVALID").Wrap(err)
	}

	if opts.Path != "" {
		raw, err := file.Provider(opts.Path).ReadBytes()
		if err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", opts.Path).Wrap(err)
		}
		doc, err := parser.Unmarshal(raw)
		if err != nil {
			return nil, oops.Code("CONFIG_PARSE_FAILED").With("path", opts.Path).Wrap(err)
		}
		if err := ValidateDocument(doc); err != nil {
			return nil, oops.With("path", opts.Path).Wrap(err)
		}
		if err := k.Load(bytesProvider(raw), parser); err != nil {
			return nil, oops.Code("CONFIG_PARSE_FAILED").With("path", opts.Path).Wrap(err)
		}
	}

	if opts.Getenv != nil {
		for key, env := range envFallbacks {
			if k.String(key) != "" {
				continue
			}
			if v := opts.Getenv(env); v != "" {
				if err := k.Set(key, v); err != nil {
					return nil, oops.Code("CONFIG_ENV_FAILED").With("env", env).Wrap(err)
				}
			}
		}
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	cfg.k = k
	return &cfg, nil
}
