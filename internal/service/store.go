package service

import (
	"context"
	"time"

	"github.com/prepost/prepost-go/internal/model"
)

// Store interfaces the services depend on. The MySQL repositories implement
// them in production; tests substitute in-memory stores with the same
// conditional-update semantics. Implementations return the repository
// package's sentinel errors (ErrUserNotFound, ErrDuplicateMessage, ...).

type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ResolveOrCreate returns the user for a normalized email, creating one
	// atomically if absent, and reports whether this call created it.
	ResolveOrCreate(ctx context.Context, email string) (*model.User, bool, error)
	SetSuspended(ctx context.Context, id string, suspended bool) error
	List(ctx context.Context, limit int) ([]model.AdminUser, error)
}

type TokenStore interface {
	Create(ctx context.Context, t *model.LoginToken) error
	DeleteByHash(ctx context.Context, tokenHash string) error
	HasActive(ctx context.Context, email string, now time.Time) (bool, error)
	// Consume atomically marks the token used; at most one caller ever wins
	// a given token.
	Consume(ctx context.Context, tokenHash string, now time.Time) (*model.LoginToken, error)
}

type MessageStore interface {
	// Create inserts the message and awards the sender a credit as one
	// atomic unit.
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	// MarkRead flips the unread message to read and spends one of the
	// reader's credits atomically; spent is false when the message was
	// already read.
	MarkRead(ctx context.Context, messageID, readerID string) (m *model.Message, spent bool, err error)
	SoftDelete(ctx context.Context, id string) error
	ListInbox(ctx context.Context, recipientID string) ([]model.Message, error)
	ListSent(ctx context.Context, senderID string) ([]model.Message, error)
	ListRecent(ctx context.Context, limit int) ([]model.RecentMessage, error)
	ReminderCandidates(ctx context.Context, before time.Time) ([]model.Message, error)
	MarkReminderSent(ctx context.Context, id string) (bool, error)
}

type ReportStore interface {
	Create(ctx context.Context, r *model.Report) error
	Dismiss(ctx context.Context, id string) error
	// ReviewAndSuspend suspends the reported message's sender and marks the
	// report reviewed as one atomic unit.
	ReviewAndSuspend(ctx context.Context, id string) error
	ListPending(ctx context.Context) ([]model.PendingReport, error)
}

type StatsStore interface {
	Collect(ctx context.Context, today, reminderBefore time.Time) (model.Stats, error)
}
