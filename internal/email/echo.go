package email

import (
	"context"
	"log/slog"
)

// EchoSender is the no-provider mode: it logs what would have been sent and
// echoes generated links back to the caller. Used for local development and
// tests; required behavior, not a stub.
type EchoSender struct{}

func NewEchoSender() *EchoSender {
	return &EchoSender{}
}

func (s *EchoSender) Send(ctx context.Context, to string, kind Kind, p Params) (Result, error) {
	slog.Info("email echoed (no provider configured)",
		"to", to, "kind", string(kind), "link", p.Link)
	return Result{DevLink: p.Link}, nil
}
