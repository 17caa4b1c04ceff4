// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/clubpass/clubpass/internal/auth"
)

// accountView is the operator rendering of auth.AccountOverview.
type accountView struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Provider           string     `json:"provider"`
	AccountType        string     `json:"accountType"`
	EmailVerification  string     `json:"emailVerification"`
	CreatedAt          time.Time  `json:"createdAt"`
	LatestVerification *tokenView `json:"latestVerification,omitempty"`
	LatestReset        *tokenView `json:"latestReset,omitempty"`
}

type tokenView struct {
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type accountShowConfig struct {
	email      string
	jsonOutput bool
}

func newAccountCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect accounts",
	}

	cfg := &accountShowConfig{}
	show := &cobra.Command{
		Use:   "show",
		Short: "Show an account and the state of its latest one-time tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAccountShow(cmd, cfg, deps)
		},
	}
	show.Flags().StringVar(&cfg.email, "email", "", "account email address")
	show.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output as JSON")
	show.Flags().String("store", "postgres", "credential store (postgres or memory)")
	show.Flags().String("database-url", "", "PostgreSQL URL (overrides database.url)")
	_ = show.MarkFlagRequired("email") //nolint:errcheck // flag is defined above

	cmd.AddCommand(show)
	return cmd
}

func runAccountShow(cmd *cobra.Command, opts *accountShowConfig, deps *Deps) error {
	deps = deps.withDefaults()
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.DiscardHandler)
	opened, err := deps.StoreOpener(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer opened.Close()

	svc, _, err := buildService(cfg, opened.Store, io.Discard, logger)
	if err != nil {
		return err
	}

	overview, err := svc.InspectAccount(ctx, opts.email)
	if err != nil {
		return err
	}

	view := newAccountView(overview)
	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return writeAccountJSON(out, view)
	}
	return writeAccountTable(out, view)
}

func newAccountView(o *auth.AccountOverview) accountView {
	a := o.Account
	return accountView{
		ID:                 a.ID.String(),
		Email:              a.Email,
		Provider:           a.Provider.String(),
		AccountType:        a.Type.String(),
		EmailVerification:  a.EmailVerification.String(),
		CreatedAt:          a.CreatedAt.UTC(),
		LatestVerification: newTokenView(o.LatestVerification),
		LatestReset:        newTokenView(o.LatestReset),
	}
}

func newTokenView(s *auth.TokenSummary) *tokenView {
	if s == nil {
		return nil
	}
	return &tokenView{
		State:     s.State.String(),
		CreatedAt: s.CreatedAt.UTC(),
		ExpiresAt: s.ExpiresAt.UTC(),
	}
}

func writeAccountJSON(w io.Writer, view accountView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	return nil
}

func writeAccountTable(w io.Writer, view accountView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", view.ID},
		{"Email", view.Email},
		{"Provider", view.Provider},
		{"Type", view.AccountType},
		{"Verification", view.EmailVerification},
		{"Created", view.CreatedAt.Format(time.RFC3339)},
		{"Latest verification token", formatToken(view.LatestVerification)},
		{"Latest reset token", formatToken(view.LatestReset)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return oops.Code("OUTPUT_FAILED").Wrap(err)
		}
	}
	if err := tw.Flush(); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	return nil
}

func formatToken(t *tokenView) string {
	if t == nil {
		return "none"
	}
	return fmt.Sprintf("%s (created %s, expires %s)",
		t.State, t.CreatedAt.Format(time.RFC3339), t.ExpiresAt.Format(time.RFC3339))
}
