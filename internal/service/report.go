package service

import (
	"context"
	"errors"
	"strings"

	"github.com/prepost/prepost-go/internal/model"
	"github.com/prepost/prepost-go/internal/repository"
)

var (
	ErrReportFieldsRequired = errors.New("message id and reason are required")
	ErrDuplicateReport      = errors.New("you have already reported this message")
	ErrReportNotFound       = errors.New("report not found")
	ErrReportReviewed       = errors.New("this report has already been reviewed")
	ErrUserNotFound         = errors.New("user not found")
)

// ReportService owns the report-to-suspension moderation workflow.
type ReportService struct {
	reports  ReportStore
	messages MessageStore
	users    UserStore
}

func NewReportService(reports ReportStore, messages MessageStore, users UserStore) *ReportService {
	return &ReportService{reports: reports, messages: messages, users: users}
}

// File creates a pending report. Only the message's recipient may report
// it, and only once. Soft-deleted messages stay reportable — their content
// is retained exactly for this.
func (s *ReportService) File(ctx context.Context, reporterID string, req model.FileReportRequest) (*model.Report, error) {
	reason := strings.TrimSpace(req.Reason)
	if req.MessageID == "" || reason == "" {
		return nil, ErrReportFieldsRequired
	}

	msg, err := s.messages.GetByID(ctx, req.MessageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if msg.RecipientID == nil || *msg.RecipientID != reporterID {
		return nil, ErrNotRecipient
	}

	report := &model.Report{
		MessageID:  req.MessageID,
		ReporterID: reporterID,
		Reason:     reason,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		if errors.Is(err, repository.ErrDuplicateReport) {
			return nil, ErrDuplicateReport
		}
		return nil, err
	}
	return report, nil
}

// Dismiss closes a pending report with no effect on the message or sender.
func (s *ReportService) Dismiss(ctx context.Context, reportID string) error {
	return s.mapReportErr(s.reports.Dismiss(ctx, reportID))
}

// SuspendFromReport suspends the reported message's sender and marks the
// report reviewed; the store guarantees both happen or neither does.
func (s *ReportService) SuspendFromReport(ctx context.Context, reportID string) error {
	return s.mapReportErr(s.reports.ReviewAndSuspend(ctx, reportID))
}

// SuspendUser suspends a user directly, independent of any report.
func (s *ReportService) SuspendUser(ctx context.Context, userID string) error {
	return s.mapUserErr(s.users.SetSuspended(ctx, userID, true))
}

// UnsuspendUser lifts a suspension.
func (s *ReportService) UnsuspendUser(ctx context.Context, userID string) error {
	return s.mapUserErr(s.users.SetSuspended(ctx, userID, false))
}

// Pending lists pending reports with their moderation context.
func (s *ReportService) Pending(ctx context.Context) ([]model.PendingReport, error) {
	return s.reports.ListPending(ctx)
}

func (s *ReportService) mapReportErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrReportNotFound):
		return ErrReportNotFound
	case errors.Is(err, repository.ErrReportReviewed):
		return ErrReportReviewed
	default:
		return err
	}
}

func (s *ReportService) mapUserErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}
