// Package email is the outbound mail collaborator. The core treats every
// send as best-effort: a failed notification never rolls back the state
// change that triggered it.
package email

import (
	"context"
	"fmt"

	"github.com/prepost/prepost-go/internal/config"
)

// Kind identifies the template an email is built from.
type Kind string

const (
	KindLoginLink  Kind = "login-link"
	KindWelcome    Kind = "welcome"
	KindNewMessage Kind = "new-message-notification"
	KindReminder   Kind = "unread-reminder"
)

// Params carries the per-send template inputs.
type Params struct {
	Link          string // magic link, login-link only
	RecipientName string
	AppURL        string
}

// Result reports the outcome of a dispatch. DevLink is populated by the
// echo sender so local flows can surface the magic link without a provider.
type Result struct {
	DevLink string
}

// Sender dispatches a templated email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to string, kind Kind, p Params) (Result, error)
}

// NewSender builds the configured sender, falling back to echo mode when no
// provider is configured. Echo mode is a supported deployment, not an error.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "":
		return NewEchoSender(), nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required for the resend provider")
		}
		return NewResendSender(cfg.ResendAPIKey, cfg.From), nil
	case "mailgun":
		if cfg.MailgunAPIKey == "" || cfg.MailgunDomain == "" {
			return nil, fmt.Errorf("MAILGUN_API_KEY and MAILGUN_DOMAIN are required for the mailgun provider")
		}
		return NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.From), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// subject returns the subject line for a template kind.
func subject(kind Kind) string {
	switch kind {
	case KindLoginLink:
		return "Your login link for Pre-Post"
	case KindWelcome:
		return "Welcome to Pre-Post"
	case KindNewMessage:
		return "Someone wrote something heartfelt for you"
	case KindReminder:
		return "You still have an unread message waiting"
	default:
		return "Pre-Post"
	}
}

// body renders the plain-text body for a template kind.
func body(kind Kind, p Params) string {
	greeting := "Hi,"
	if p.RecipientName != "" {
		greeting = fmt.Sprintf("Hi %s,", p.RecipientName)
	}

	switch kind {
	case KindLoginLink:
		return fmt.Sprintf(`%s

Click the link below to sign in. This link expires in 15 minutes.

%s

If you didn't request this email, you can safely ignore it.`, greeting, p.Link)

	case KindWelcome:
		return fmt.Sprintf(`%s

Welcome to Pre-Post, a place for anonymous messages people never had the
courage to say out loud.

Write a message to someone you care about to earn a credit, and use credits
to unlock messages written for you.

%s`, greeting, p.AppURL)

	case KindNewMessage:
		return fmt.Sprintf(`%s

Someone who knows you has written an anonymous message just for you. The
sender's identity is never revealed.

To read it, you'll first pay it forward: write a message to someone you
care about, then unlock yours.

%s/login`, greeting, p.AppURL)

	case KindReminder:
		return fmt.Sprintf(`%s

A heartfelt anonymous message is still waiting for you. It was written a
while ago and hasn't been read yet.

%s/login`, greeting, p.AppURL)

	default:
		return greeting
	}
}
