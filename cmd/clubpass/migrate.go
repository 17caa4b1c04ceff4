// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/clubpass/clubpass/internal/store"
)

func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply, roll back and inspect the PostgreSQL schema migrations
embedded in the binary.`,
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL URL (overrides database.url)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m, "Migrated to version")
			})
		},
	})

	var all bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		Long: `Roll back the latest migration. With --all every migration is rolled
back and all account and token data is dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				var err error
				if all {
					err = m.Down()
				} else {
					err = m.Steps(-1)
				}
				if err != nil {
					return err
				}
				return printVersion(cmd, m, "Rolled back to version")
			})
		},
	}
	down.Flags().BoolVar(&all, "all", false, "roll back every migration")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				status, err := m.Status()
				if err != nil {
					return err
				}
				return printStatus(cmd, status)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				return printVersion(cmd, m, "Version")
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it",
		Long: `Mark VERSION as applied and clear the dirty flag without running any
migration. Use this after fixing a failed migration by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				return printVersion(cmd, m, "Forced version")
			})
		},
	})

	return cmd
}

// withMigrator opens a migrator for the configured database, runs fn and
// closes it.
func withMigrator(cmd *cobra.Command, deps *Deps, fn func(m Migrator) error) (err error) {
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return runMigrator(deps, cfg.Database.URL, fn)
}

func runMigrator(deps *Deps, databaseURL string, fn func(m Migrator) error) (err error) {
	if databaseURL == "" {
		return errDatabaseURLRequired()
	}

	m, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(m)
}

// autoMigrate applies pending migrations before serve opens the store.
func autoMigrate(deps *Deps, databaseURL string, logger *slog.Logger) error {
	return runMigrator(deps, databaseURL, func(m Migrator) error {
		if err := m.Up(); err != nil {
			return oops.With("operation", "auto-migrate").Wrap(err)
		}
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		logger.Info("database migrations applied", "version", v, "dirty", dirty)
		return nil
	})
}

func printVersion(cmd *cobra.Command, m Migrator, label string) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d%s\n", label, v, suffix)
	return err
}

func printStatus(cmd *cobra.Command, status *store.Status) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Version: %d", status.Version)
	if status.Dirty {
		b.WriteString(" (dirty)")
	}
	b.WriteString("\n")

	lines := func(state string, versions []uint) error {
		for _, v := range versions {
			name, err := store.MigrationName(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(&b, "  %-8s %s\n", state, name)
		}
		return nil
	}
	if err := lines("applied", status.Applied); err != nil {
		return err
	}
	if err := lines("pending", status.Pending); err != nil {
		return err
	}

	_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}

// parseForceVersion parses the VERSION argument of migrate force.
func parseForceVersion(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be an integer, got %q", s)
	}
	if v < 0 {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be non-negative, got %d", v)
	}
	return v, nil
}
