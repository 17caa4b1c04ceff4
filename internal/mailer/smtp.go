// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package mailer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/wneessen/go-mail"

	"github.com/clubpass/clubpass/internal/auth"
)

// SMTPConfig configures SMTPDispatcher.
type SMTPConfig struct {
	Host        string
	Port        int
	SSL         bool
	Username    string
	Password    string
	SenderEmail string
	SenderName  string
	// ResetTTL is quoted in the reset email body.
	ResetTTL time.Duration
	// Attempts bounds delivery tries per email. Zero means 3.
	Attempts uint64
	// RetryBase is the first backoff interval. Zero means one second.
	RetryBase time.Duration
	Timeout   time.Duration
}

// sender is the part of *mail.Client used for delivery.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPDispatcher implements auth.EmailDispatcher over SMTP.
type SMTPDispatcher struct {
	cfg       SMTPConfig
	renderer  renderer
	newSender func() (sender, error)
	logger    *slog.Logger
}

var _ auth.EmailDispatcher = (*SMTPDispatcher)(nil)

// NewSMTPDispatcher validates cfg and returns a dispatcher. No connection
// is made until the first email is sent.
func NewSMTPDispatcher(cfg SMTPConfig, logger *slog.Logger) (*SMTPDispatcher, error) {
	if cfg.Host == "" {
		return nil, oops.Code("SMTP_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.SenderEmail == "" {
		return nil, oops.Code("SMTP_CONFIG_INVALID").Errorf("sender email is required")
	}
	if cfg.Port == 0 {
		cfg.Port = mail.DefaultPortTLS
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &SMTPDispatcher{
		cfg:      cfg,
		renderer: renderer{senderName: cfg.SenderName, resetTTL: cfg.ResetTTL, now: time.Now},
		logger:   logger,
	}
	d.newSender = d.dial
	return d, nil
}

func (d *SMTPDispatcher) dial() (sender, error) {
	opts := []mail.Option{mail.WithTimeout(d.cfg.Timeout)}
	switch {
	case d.cfg.Port == mail.DefaultPortSSL:
		opts = append(opts, mail.WithSSL())
	case d.cfg.SSL:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	// Explicit port last so it wins over the policy's default port.
	opts = append(opts, mail.WithPort(d.cfg.Port))
	if d.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(d.cfg.Username),
			mail.WithPassword(d.cfg.Password),
		)
	}

	client, err := mail.NewClient(d.cfg.Host, opts...)
	if err != nil {
		return nil, oops.Code("SMTP_CLIENT_FAILED").With("host", d.cfg.Host).Wrap(err)
	}
	return client, nil
}

// SendVerificationEmail sends the email verification link to to.
func (d *SMTPDispatcher) SendVerificationEmail(ctx context.Context, to, verifyLink string) error {
	return d.send(ctx, kindVerifyEmail, to, verifyLink)
}

// SendPasswordResetEmail sends the password reset link to to.
func (d *SMTPDispatcher) SendPasswordResetEmail(ctx context.Context, to, resetLink string) error {
	return d.send(ctx, kindResetPassword, to, resetLink)
}

func (d *SMTPDispatcher) send(ctx context.Context, k kind, to, link string) error {
	rendered, err := d.renderer.render(k, to, link)
	if err != nil {
		return err
	}
	msg, err := d.buildMsg(rendered)
	if err != nil {
		return err
	}

	s, err := d.newSender()
	if err != nil {
		return err
	}

	attempt := 0
	backoff := retry.WithMaxRetries(d.cfg.Attempts-1, retry.NewExponential(d.cfg.RetryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		sendErr := s.DialAndSendWithContext(ctx, msg)
		if sendErr == nil {
			return nil
		}
		if isPermanent(sendErr) {
			return sendErr
		}
		d.logger.WarnContext(ctx, "email delivery failed, retrying",
			"kind", string(k),
			"attempt", attempt,
			"error", sendErr,
		)
		return retry.RetryableError(sendErr)
	})
	if err != nil {
		return oops.Code("EMAIL_SEND_FAILED").
			With("kind", string(k)).
			With("attempts", attempt).
			Wrap(err)
	}

	d.logger.InfoContext(ctx, "email sent", "kind", string(k), "attempts", attempt)
	return nil
}

func (d *SMTPDispatcher) buildMsg(m *message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(d.cfg.SenderName, d.cfg.SenderEmail); err != nil {
		return nil, oops.Code("EMAIL_ADDRESS_INVALID").With("field", "from").Wrap(err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, oops.Code("EMAIL_ADDRESS_INVALID").With("field", "to").Wrap(err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}

// isPermanent reports whether the relay rejected the message for good.
// Dial failures and temporary SMTP replies are retried.
func isPermanent(err error) bool {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return !sendErr.IsTemp()
	}
	return false
}
