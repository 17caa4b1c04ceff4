// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package mailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
)

// LogDispatcher writes the plain-text body of every email to a writer
// instead of sending it. Links in the body carry live tokens, so it is only
// selected with email.driver=log.
type LogDispatcher struct {
	mu       sync.Mutex
	w        io.Writer
	renderer renderer
	logger   *slog.Logger
}

var _ auth.EmailDispatcher = (*LogDispatcher)(nil)

// NewLogDispatcher returns a dispatcher writing to w.
func NewLogDispatcher(w io.Writer, senderName string, resetTTL time.Duration, logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{
		w:        w,
		renderer: renderer{senderName: senderName, resetTTL: resetTTL, now: time.Now},
		logger:   logger,
	}
}

// SendVerificationEmail writes the verification email.
func (d *LogDispatcher) SendVerificationEmail(ctx context.Context, to, verifyLink string) error {
	return d.write(ctx, kindVerifyEmail, to, verifyLink)
}

// SendPasswordResetEmail writes the reset email.
func (d *LogDispatcher) SendPasswordResetEmail(ctx context.Context, to, resetLink string) error {
	return d.write(ctx, kindResetPassword, to, resetLink)
}

func (d *LogDispatcher) write(ctx context.Context, k kind, to, link string) error {
	m, err := d.renderer.render(k, to, link)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := fmt.Fprintf(d.w, "To: %s\nSubject: %s\n\n%s\n", m.To, m.Subject, m.Text); err != nil {
		return oops.Code("EMAIL_SEND_FAILED").With("kind", string(k)).Wrap(err)
	}
	d.logger.InfoContext(ctx, "email written to log dispatcher", "kind", string(k))
	return nil
}
