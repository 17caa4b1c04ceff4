//go:build integration

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/clubpass/clubpass/internal/store"
)

var _ = Describe("Connect", Ordered, func() {
	var (
		container *postgres.PostgresContainer
		connStr   string
		pool      *pgxpool.Pool
	)

	BeforeAll(func(ctx SpecContext) {
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("clubpass_test"),
			postgres.WithUsername("clubpass"),
			postgres.WithPassword("clubpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		pool, err = store.Connect(ctx, store.PoolConfig{URL: connStr, MaxConns: 4})
		Expect(err).NotTo(HaveOccurred())

		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			_ = container.Terminate(context.Background())
		}
	})

	It("honours the pool size override", func() {
		Expect(pool.Config().MaxConns).To(Equal(int32(4)))
	})

	It("reports the database as ready", func() {
		Expect(store.ReadinessCheck(pool, time.Second)()).To(BeTrue())
	})

	It("creates the auth tables", func(ctx SpecContext) {
		for _, table := range []string{
			"accounts", "members", "owners",
			"refresh_tokens", "verification_tokens", "reset_password_tokens",
		} {
			var exists bool
			err := pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
				table).Scan(&exists)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue(), "table %s", table)
		}
	})

	It("enforces case-insensitive email uniqueness", func(ctx SpecContext) {
		insert := `INSERT INTO accounts (id, email, password_hash, provider, account_type, email_verification, created_at)
			VALUES ($1, $2, 'x', 0, 1, 0, now())`
		_, err := pool.Exec(ctx, insert, "acc-upper", "Case@Example.com")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func(ctx SpecContext) {
			_, _ = pool.Exec(ctx, `DELETE FROM accounts WHERE id = 'acc-upper'`)
		})

		_, err = pool.Exec(ctx, insert, "acc-lower", "case@example.com")
		Expect(err).To(HaveOccurred())
	})

	It("reports closed pools as not ready", func(ctx SpecContext) {
		other, err := store.Connect(ctx, store.PoolConfig{URL: connStr})
		Expect(err).NotTo(HaveOccurred())
		other.Close()
		Expect(store.ReadinessCheck(other, time.Second)()).To(BeFalse())
	})
})
