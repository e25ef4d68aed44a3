package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prepost/prepost-go/internal/email"
	"github.com/prepost/prepost-go/internal/filter"
	"github.com/prepost/prepost-go/internal/model"
	"github.com/prepost/prepost-go/internal/repository"
)

var (
	ErrMissingFields       = errors.New("recipient name, recipient email and content are required")
	ErrBlockedContent      = errors.New(filter.Reason)
	ErrBlockedName         = errors.New("recipient name contains inappropriate content")
	ErrDuplicateRecipient  = errors.New("you've already sent a message to this person")
	ErrMessageNotFound     = errors.New("message not found")
	ErrNotRecipient        = errors.New("you can only access messages sent to you")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// MessageService owns the message lifecycle: creation, credit-gated
// read-unlock, recipient-side soft deletion and the reminder sweep.
type MessageService struct {
	messages    MessageStore
	users       UserStore
	mailer      email.Sender
	appURL      string
	reminderAge time.Duration
}

func NewMessageService(messages MessageStore, users UserStore, mailer email.Sender,
	appURL string, reminderAge time.Duration) *MessageService {
	return &MessageService{
		messages:    messages,
		users:       users,
		mailer:      mailer,
		appURL:      appURL,
		reminderAge: reminderAge,
	}
}

// Send creates a message and awards the sender one credit, atomically. The
// recipient need not be registered; if they are, the message binds to them
// now, otherwise it binds retroactively when their email registers.
func (s *MessageService) Send(ctx context.Context, senderID string, req model.SendMessageRequest) (*model.Message, error) {
	name := strings.TrimSpace(req.RecipientName)
	content := strings.TrimSpace(req.Content)
	addr := model.NormalizeEmail(req.RecipientEmail)
	if name == "" || content == "" || addr == "" {
		return nil, ErrMissingFields
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if sender.Suspended {
		return nil, ErrAccountSuspended
	}

	if blocked, _ := filter.Check(content); blocked {
		return nil, ErrBlockedContent
	}
	if blocked, _ := filter.Check(name); blocked {
		return nil, ErrBlockedName
	}

	msg := &model.Message{
		SenderID:       senderID,
		RecipientEmail: addr,
		RecipientName:  name,
		Content:        content,
	}
	recipient, err := s.users.GetByEmail(ctx, addr)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if recipient != nil {
		msg.RecipientID = &recipient.ID
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrDuplicateMessage) {
			return nil, ErrDuplicateRecipient
		}
		return nil, err
	}

	// The message and credit award are committed; notification delivery is
	// best-effort and must never undo them.
	if _, err := s.mailer.Send(ctx, addr, email.KindNewMessage, email.Params{
		RecipientName: name,
		AppURL:        s.appURL,
	}); err != nil {
		slog.Error("new-message notification dispatch failed", "to", addr, "error", err)
	}

	return msg, nil
}

// Read returns the message content to its recipient, spending one credit on
// the first read. Re-reads are free and idempotent. A soft-deleted message
// reads as not found.
func (s *MessageService) Read(ctx context.Context, messageID, userID string) (*model.Message, bool, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, false, ErrMessageNotFound
		}
		return nil, false, err
	}
	if msg.IsDeleted {
		return nil, false, ErrMessageNotFound
	}
	if msg.RecipientID == nil || *msg.RecipientID != userID {
		return nil, false, ErrNotRecipient
	}

	if msg.IsRead {
		return msg, false, nil
	}

	msg, spent, err := s.messages.MarkRead(ctx, messageID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, false, ErrInsufficientCredits
		}
		return nil, false, err
	}
	return msg, spent, nil
}

// Delete soft-deletes a message; only the recipient may do it. Content is
// retained for moderation, and the sender's one-message-per-person slot is
// not released.
func (s *MessageService) Delete(ctx context.Context, messageID, userID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.RecipientID == nil || *msg.RecipientID != userID {
		return ErrNotRecipient
	}
	if msg.IsDeleted {
		return nil
	}
	return s.messages.SoftDelete(ctx, messageID)
}

// Inbox lists the user's received, undeleted messages.
func (s *MessageService) Inbox(ctx context.Context, userID string) ([]model.Message, error) {
	return s.messages.ListInbox(ctx, userID)
}

// Sent lists the user's sent messages.
func (s *MessageService) Sent(ctx context.Context, userID string) ([]model.Message, error) {
	return s.messages.ListSent(ctx, userID)
}

// SweepResult summarizes one reminder sweep run.
type SweepResult struct {
	Eligible int `json:"eligible"`
	Sent     int `json:"sent"`
}

// RunReminderSweep sends a one-time reminder for messages that have sat
// unread past the age threshold. The sweep is idempotent and safe to run
// concurrently: a message is eligible only while reminder_sent_at is null,
// and marking re-checks eligibility, so a message read between selection
// and send is skipped. Failed sends stay eligible for the next sweep.
func (s *MessageService) RunReminderSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	candidates, err := s.messages.ReminderCandidates(ctx, now.Add(-s.reminderAge))
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Eligible: len(candidates)}
	for _, msg := range candidates {
		if _, err := s.mailer.Send(ctx, msg.RecipientEmail, email.KindReminder, email.Params{
			RecipientName: msg.RecipientName,
			AppURL:        s.appURL,
		}); err != nil {
			slog.Error("reminder dispatch failed", "message_id", msg.ID, "error", err)
			continue
		}

		marked, err := s.messages.MarkReminderSent(ctx, msg.ID)
		if err != nil {
			return result, err
		}
		if marked {
			result.Sent++
		}
	}
	return result, nil
}
