// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/auth/memory"
	"github.com/clubpass/clubpass/internal/auth/postgres"
	"github.com/clubpass/clubpass/internal/config"
	"github.com/clubpass/clubpass/internal/observability"
	"github.com/clubpass/clubpass/internal/store"
)

// readinessTimeout bounds each readiness ping of the database.
const readinessTimeout = 2 * time.Second

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// StoreOpener opens the credential store selected by store.driver.
	// Default: openStore
	StoreOpener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*OpenedStore, error)

	// MigratorFactory creates a migrator for a database URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// Ready is called once serve accepts requests, with the bound addresses.
	Ready func(apiAddr, metricsAddr string)
}

// OpenedStore is a credential store together with its readiness probe.
type OpenedStore struct {
	Store auth.Store
	Ready observability.ReadinessChecker
	Close func()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Status() (*store.Status, error)
	Force(version int) error
	Close() error
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.StoreOpener == nil {
		out.StoreOpener = openStore
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.Ready == nil {
		out.Ready = func(string, string) {}
	}
	return &out
}

// openStore connects the store named by cfg.Store.Driver.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*OpenedStore, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Warn("using in-memory store, accounts are lost on exit")
		return &OpenedStore{
			Store: memory.NewStore(),
			Ready: func() bool { return true },
			Close: func() {},
		}, nil
	case config.StorePostgres:
		if cfg.Database.URL == "" {
			return nil, errDatabaseURLRequired()
		}
		pool, err := store.Connect(ctx, store.PoolConfig{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("connected to database")
		return &OpenedStore{
			Store: postgres.NewStore(pool),
			Ready: store.ReadinessCheck(pool, readinessTimeout),
			Close: pool.Close,
		}, nil
	default:
		return nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.Store.Driver).
			Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func errDatabaseURLRequired() error {
	return oops.Code("CONFIG_INVALID").Errorf("database.url or DATABASE_URL is required")
}
