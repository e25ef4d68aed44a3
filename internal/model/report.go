package model

import "time"

// Report statuses. A report transitions out of pending exactly once and is
// never re-opened.
const (
	ReportStatusPending   = "pending"
	ReportStatusDismissed = "dismissed"
	ReportStatusReviewed  = "reviewed"
)

// Report is a moderation signal bound to exactly one message and one
// reporting user.
type Report struct {
	ID         string
	MessageID  string
	ReporterID string
	Reason     string
	Status     string
	ReviewedAt *time.Time
	CreatedAt  time.Time
}

// FileReportRequest represents a report creation request.
type FileReportRequest struct {
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
}

// PendingReport is a pending report with the context an admin needs to act:
// the reported message, its sender and the reporter.
type PendingReport struct {
	ID              string    `json:"id"`
	Reason          string    `json:"reason"`
	CreatedAt       time.Time `json:"created_at"`
	MessageID       string    `json:"message_id"`
	MessageContent  string    `json:"message_content"`
	SenderID        string    `json:"sender_id"`
	SenderEmail     string    `json:"sender_email"`
	SenderSuspended bool      `json:"sender_suspended"`
	ReporterEmail   string    `json:"reporter_email"`
}
