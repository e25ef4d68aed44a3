package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prepost/prepost-go/internal/dbx"
	"github.com/prepost/prepost-go/internal/model"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrDuplicateMessage = errors.New("message already exists for this sender and recipient")
)

const messageColumns = `id, sender_id, recipient_email, recipient_name, recipient_id,
	content, is_read, read_at, is_deleted, deleted_at, reminder_sent_at, created_at`

// MessageRepository handles message persistence. The paired mutations the
// product depends on (create+award, mark-read+spend) are transactions here,
// not call sequences in the service layer.
type MessageRepository struct {
	db     *sql.DB
	ledger *CreditLedger
}

func NewMessageRepository(db *sql.DB, ledger *CreditLedger) *MessageRepository {
	return &MessageRepository{db: db, ledger: ledger}
}

// Create inserts the message and awards the sender 1 credit in one
// transaction: no message without an award, no award without a message.
// A duplicate (sender, recipient email) pair surfaces as
// ErrDuplicateMessage via the unique key, closing the concurrent-send race.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, sender_id, recipient_email, recipient_name, recipient_id, content, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.SenderID, m.RecipientEmail, m.RecipientName, m.RecipientID, m.Content, m.CreatedAt)
		if err != nil {
			if isDuplicateEntryError(err) {
				return ErrDuplicateMessage
			}
			return err
		}
		return r.ledger.Award(ctx, tx, m.SenderID)
	})
}

// GetByID retrieves a message by ID, including soft-deleted rows; callers
// decide whether deletion matters for their operation.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

// MarkRead performs the read-unlock: in one transaction it flips is_read on
// the condition that the message is still unread, and spends one of the
// reader's credits. Concurrent first reads resolve to exactly one spend;
// the loser of the conditional UPDATE reports spent=false and the message
// is returned as an idempotent re-read. ErrInsufficientCredits rolls the
// whole unit back, leaving the message unread.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, readerID string) (m *model.Message, spent bool, err error) {
	err = dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		now := time.Now()
		res, err := tx.ExecContext(ctx,
			`UPDATE messages SET is_read = TRUE, read_at = ? WHERE id = ? AND is_read = FALSE`,
			now, messageID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 1 {
			if err := r.ledger.Spend(ctx, tx, readerID); err != nil {
				return err
			}
			spent = true
		}

		row := tx.QueryRowContext(ctx,
			`SELECT `+messageColumns+` FROM messages WHERE id = ?`, messageID)
		m, err = scanMessage(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMessageNotFound
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return m, spent, nil
}

// SoftDelete marks a message deleted. Content is retained for moderation
// and the sender's uniqueness slot stays occupied.
func (r *MessageRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_deleted = TRUE, deleted_at = ? WHERE id = ? AND is_deleted = FALSE`,
		time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Deleting an already-deleted message is a no-op, but a missing
		// message is an error.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListInbox returns the recipient's messages, newest first, excluding
// soft-deleted rows.
func (r *MessageRepository) ListInbox(ctx context.Context, recipientID string) ([]model.Message, error) {
	return r.list(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE recipient_id = ? AND is_deleted = FALSE
		 ORDER BY created_at DESC`, recipientID)
}

// ListSent returns the sender's messages, newest first. Soft deletion is a
// recipient-side action and does not hide a message from its sender.
func (r *MessageRepository) ListSent(ctx context.Context, senderID string) ([]model.Message, error) {
	return r.list(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE sender_id = ?
		 ORDER BY created_at DESC`, senderID)
}

// ListRecent returns the newest messages joined with their sender's email
// for the admin overview.
func (r *MessageRepository) ListRecent(ctx context.Context, limit int) ([]model.RecentMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, u.email, m.recipient_email, m.recipient_name, m.is_read, m.created_at
		 FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 ORDER BY m.created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.RecentMessage{}
	for rows.Next() {
		var m model.RecentMessage
		if err := rows.Scan(&m.ID, &m.SenderEmail, &m.RecipientEmail, &m.RecipientName,
			&m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ReminderCandidates selects messages eligible for an unread reminder:
// unread, undeleted, never reminded, created before the cutoff.
func (r *MessageRepository) ReminderCandidates(ctx context.Context, before time.Time) ([]model.Message, error) {
	return r.list(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE is_read = FALSE AND is_deleted = FALSE AND reminder_sent_at IS NULL
		   AND created_at < ?`, before)
}

// MarkReminderSent records a successful reminder. The WHERE clause
// re-checks the full eligibility predicate, so a message read or deleted
// between selection and send is left untouched; the sweep stays idempotent
// under concurrent or redundant invocations.
func (r *MessageRepository) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET reminder_sent_at = ?
		 WHERE id = ? AND is_read = FALSE AND is_deleted = FALSE AND reminder_sent_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *MessageRepository) list(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*model.Message, error) {
	m := &model.Message{}
	var recipientID sql.NullString
	var readAt, deletedAt, reminderSentAt sql.NullTime
	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientEmail, &m.RecipientName, &recipientID,
		&m.Content, &m.IsRead, &readAt, &m.IsDeleted, &deletedAt, &reminderSentAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if recipientID.Valid {
		m.RecipientID = &recipientID.String
	}
	if readAt.Valid {
		m.ReadAt = &readAt.Time
	}
	if deletedAt.Valid {
		m.DeletedAt = &deletedAt.Time
	}
	if reminderSentAt.Valid {
		m.ReminderSentAt = &reminderSentAt.Time
	}
	return m, nil
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
