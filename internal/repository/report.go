package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prepost/prepost-go/internal/dbx"
	"github.com/prepost/prepost-go/internal/model"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrDuplicateReport = errors.New("report already filed for this message")
	ErrReportReviewed  = errors.New("report already reviewed")
)

// ReportRepository handles report persistence and the report-driven
// moderation transitions.
type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create files a report with status pending. The unique
// (message_id, reporter_id) key maps a second report from the same reporter
// to ErrDuplicateReport.
func (r *ReportRepository) Create(ctx context.Context, rep *model.Report) error {
	rep.ID = uuid.NewString()
	rep.Status = model.ReportStatusPending
	rep.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, message_id, reporter_id, reason, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.MessageID, rep.ReporterID, rep.Reason, rep.Status, rep.CreatedAt)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateReport
		}
		return err
	}
	return nil
}

// GetByID retrieves a report by ID.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	rep := &model.Report{}
	var reviewedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, message_id, reporter_id, reason, status, reviewed_at, created_at
		 FROM reports WHERE id = ?`, id).Scan(
		&rep.ID, &rep.MessageID, &rep.ReporterID, &rep.Reason, &rep.Status, &reviewedAt, &rep.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if reviewedAt.Valid {
		rep.ReviewedAt = &reviewedAt.Time
	}
	return rep, nil
}

// Dismiss transitions a pending report to dismissed. The underlying message
// and its sender are untouched. A report leaves pending exactly once.
func (r *ReportRepository) Dismiss(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reports SET status = ?, reviewed_at = ? WHERE id = ? AND status = ?`,
		model.ReportStatusDismissed, time.Now(), id, model.ReportStatusPending)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrReportReviewed
	}
	return nil
}

// ReviewAndSuspend suspends the reported message's sender and marks the
// report reviewed in one transaction; partial application would leave a
// reviewed report with an unsuspended sender or vice versa.
func (r *ReportRepository) ReviewAndSuspend(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		var senderID, status string
		err := tx.QueryRowContext(ctx,
			`SELECT m.sender_id, r.status
			 FROM reports r JOIN messages m ON m.id = r.message_id
			 WHERE r.id = ?`, id).Scan(&senderID, &status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReportNotFound
			}
			return err
		}
		if status != model.ReportStatusPending {
			return ErrReportReviewed
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET suspended = TRUE WHERE id = ?`, senderID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE reports SET status = ?, reviewed_at = ? WHERE id = ? AND status = ?`,
			model.ReportStatusReviewed, time.Now(), id, model.ReportStatusPending)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrReportReviewed
		}
		return nil
	})
}

// ListPending returns pending reports with the message, sender and reporter
// context the admin console displays, newest first.
func (r *ReportRepository) ListPending(ctx context.Context) ([]model.PendingReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.reason, r.created_at,
		        m.id, m.content,
		        s.id, s.email, s.suspended,
		        u.email
		 FROM reports r
		 JOIN messages m ON m.id = r.message_id
		 JOIN users s ON s.id = m.sender_id
		 JOIN users u ON u.id = r.reporter_id
		 WHERE r.status = ?
		 ORDER BY r.created_at DESC`, model.ReportStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []model.PendingReport{}
	for rows.Next() {
		var p model.PendingReport
		if err := rows.Scan(&p.ID, &p.Reason, &p.CreatedAt,
			&p.MessageID, &p.MessageContent,
			&p.SenderID, &p.SenderEmail, &p.SenderSuspended,
			&p.ReporterEmail); err != nil {
			return nil, err
		}
		reports = append(reports, p)
	}
	return reports, rows.Err()
}
