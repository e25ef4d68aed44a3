package email

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSender dispatches mail through the Mailgun API.
type MailgunSender struct {
	mg   mailgun.Mailgun
	from string
}

func NewMailgunSender(domain, apiKey, from string) *MailgunSender {
	return &MailgunSender{
		mg:   mailgun.NewMailgun(domain, apiKey),
		from: from,
	}
}

func (s *MailgunSender) Send(ctx context.Context, to string, kind Kind, p Params) (Result, error) {
	message := s.mg.NewMessage(s.from, subject(kind), body(kind, p), to)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, _, err := s.mg.Send(ctx, message); err != nil {
		return Result{}, fmt.Errorf("mailgun send: %w", err)
	}

	return Result{}, nil
}
