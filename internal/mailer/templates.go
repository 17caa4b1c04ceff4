// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

// Package mailer delivers account emails: verification and password reset
// links. SMTPDispatcher sends through an SMTP relay; LogDispatcher writes
// messages to a writer for local development.
package mailer

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strconv"
	texttemplate "text/template"
	"time"

	"github.com/samber/oops"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

type kind string

const (
	kindVerifyEmail   kind = "verify_email"
	kindResetPassword kind = "reset_password"
)

var subjects = map[kind]string{
	kindVerifyEmail:   "Verify your email address",
	kindResetPassword: "Reset your password",
}

// message is a rendered email.
type message struct {
	Kind    kind
	To      string
	Subject string
	HTML    string
	Text    string
}

type templateData struct {
	Link       string
	SenderName string
	ExpiresIn  string
	Year       int
}

// renderer turns links into messages.
type renderer struct {
	senderName string
	resetTTL   time.Duration
	now        func() time.Time
}

func (r renderer) render(k kind, to, link string) (*message, error) {
	data := templateData{
		Link:       link,
		SenderName: r.senderName,
		ExpiresIn:  humanDuration(r.resetTTL),
		Year:       r.now().Year(),
	}

	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, string(k)+".html.tmpl", data); err != nil {
		return nil, oops.Code("EMAIL_RENDER_FAILED").With("template", k).Wrap(err)
	}
	if err := textTemplates.ExecuteTemplate(&text, string(k)+".txt.tmpl", data); err != nil {
		return nil, oops.Code("EMAIL_RENDER_FAILED").With("template", k).Wrap(err)
	}

	return &message{Kind: k, To: to, Subject: subjects[k], HTML: html.String(), Text: text.String()}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short while"
	case d%(24*time.Hour) == 0 && d >= 24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
