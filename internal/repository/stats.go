package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/prepost/prepost-go/internal/model"
)

// StatsRepository computes the admin aggregation rollups. Read-only; every
// value reflects entity state at query time.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Collect gathers the dashboard counters. today is the rolling day boundary
// and reminderBefore mirrors the reminder sweep's age cutoff, so the
// eligible-pending gauge reports exactly what the next sweep would pick up.
func (r *StatsRepository) Collect(ctx context.Context, today, reminderBefore time.Time) (model.Stats, error) {
	var s model.Stats

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&s.Users, `SELECT COUNT(*) FROM users`, nil},
		{&s.Messages, `SELECT COUNT(*) FROM messages`, nil},
		{&s.UnreadMessages, `SELECT COUNT(*) FROM messages WHERE is_read = FALSE`, nil},
		{&s.PendingReports, `SELECT COUNT(*) FROM reports WHERE status = ?`, []any{model.ReportStatusPending}},
		{&s.UsersToday, `SELECT COUNT(*) FROM users WHERE created_at >= ?`, []any{today}},
		{&s.MessagesToday, `SELECT COUNT(*) FROM messages WHERE created_at >= ?`, []any{today}},
		{&s.SuspendedUsers, `SELECT COUNT(*) FROM users WHERE suspended = TRUE`, nil},
		{&s.CreditsOutstanding, `SELECT COALESCE(SUM(credits), 0) FROM users`, nil},
		{&s.DeletedMessages, `SELECT COUNT(*) FROM messages WHERE is_deleted = TRUE`, nil},
		{&s.RemindersSent, `SELECT COUNT(*) FROM messages WHERE reminder_sent_at IS NOT NULL`, nil},
		{&s.ReminderEligible,
			`SELECT COUNT(*) FROM messages
			 WHERE is_read = FALSE AND is_deleted = FALSE AND reminder_sent_at IS NULL
			   AND created_at < ?`, []any{reminderBefore}},
	}

	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return model.Stats{}, err
		}
	}

	if s.Messages > 0 {
		s.ReadRate = float64(s.Messages-s.UnreadMessages) / float64(s.Messages)
	}

	return s, nil
}
